package cli

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/filex"
	"github.com/dmitrijs2005/vaultx/internal/netx"
)

// backupDir is where -download puts the exported document, relative to the
// working directory.
const backupDir = "backups"

// downloadPresigned is a seam for tests.
var downloadPresigned = netx.DownloadPresigned

// Backup asks the server to export the vault and prints the time-limited
// download link. With -download the document is fetched right away.
func (a *App) Backup(ctx context.Context, args []string) error {
	fs := newFlagSet("backup")
	download := fs.Bool("download", false, "save the backup under ./"+backupDir)
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	rctx, cancel := a.requestContext(ctx)
	b, err := a.api.ExportBackup(rctx)
	cancel()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Backup %s\n", b.Key)
	fmt.Fprintf(a.out, "Download link (valid until %s):\n%s\n", b.ExpiresAt.Local().Format(time.DateTime), b.URL)

	if !*download {
		return nil
	}

	rctx, cancel = a.requestContext(ctx)
	defer cancel()

	body, err := downloadPresigned(rctx, http.DefaultClient, b.URL)
	if err != nil {
		return err
	}
	p, err := filex.WritePrivate(backupDir, path.Base(b.Key), body)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", p)
	return nil
}
