package secrets

import (
	"fmt"
	"os"
)

// UnsealEnv replaces sealed values of the named environment variables with
// their plaintext. The key file is only read when at least one value is sealed.
func UnsealEnv(keyPath string, names ...string) error {
	var kr *Keyring
	for _, name := range names {
		v := os.Getenv(name)
		if !IsSealed(v) {
			continue
		}
		if kr == nil {
			var err error
			if kr, err = Load(keyPath); err != nil {
				return fmt.Errorf("unseal %s: %w", name, err)
			}
		}
		plain, err := kr.Unseal(v)
		if err != nil {
			return fmt.Errorf("unseal %s: %w", name, err)
		}
		os.Setenv(name, plain)
	}
	return nil
}
