package cli

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/cryptox"
)

// Keygen prints a fresh MASTER_KEY for the server. With -passphrase the key
// is derived from a typed passphrase and a random salt; both are needed to
// derive it again.
func (a *App) Keygen(ctx context.Context, args []string) error {
	fs := newFlagSet("keygen")
	fromPassphrase := fs.Bool("passphrase", false, "derive the key from a passphrase")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	if !*fromPassphrase {
		fmt.Fprintf(a.out, "MASTER_KEY=%s\n", cryptox.GenerateMasterKey())
		return nil
	}

	pass, err := getHidden("Passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)
	if len(pass) == 0 {
		return fmt.Errorf("%w: passphrase is empty", ErrUsage)
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveMasterKey(pass, salt)
	defer common.WipeByteArray(key)

	fmt.Fprintf(a.out, "MASTER_KEY=%s\n", hex.EncodeToString(key))
	fmt.Fprintf(a.out, "salt=%s\n", hex.EncodeToString(salt))
	return nil
}
