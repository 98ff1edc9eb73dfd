//go:build !windows

package assets

// markHidden is a no-op on POSIX platforms; the leading dot in the cache
// directory name already hides it.
func markHidden(string) error {
	return nil
}
