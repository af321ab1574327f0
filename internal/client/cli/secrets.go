package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
)

func (a *App) List(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	secretType := fs.String("type", "", "only secrets of this type")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	secrets, err := a.api.ListSecrets(ctx, *secretType)
	if err != nil {
		return err
	}
	if len(secrets) == 0 {
		fmt.Fprintln(a.out, "No secrets")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tUPDATED")
	for _, s := range secrets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Type, s.Title, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) Get(ctx context.Context, args []string) error {
	rest, err := parseArgs(newFlagSet("get"), args, 1)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	s, err := a.api.GetSecret(ctx, rest[0])
	if err != nil {
		return err
	}
	printSecret(a, s)
	return nil
}

func printSecret(a *App, s *rpc.Secret) {
	fmt.Fprintf(a.out, "Title:       %s\n", s.Title)
	fmt.Fprintf(a.out, "Type:        %s\n", s.Type)
	if s.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(a.out, "Updated:     %s\n", s.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "Data:\n%s\n", s.Data)
}

// Add reads the secret value without echo, or as several lines with
// -multiline.
func (a *App) Add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	title := fs.String("title", "", "secret title")
	secretType := fs.String("type", "", "secret, key or password")
	description := fs.String("description", "", "free-form description")
	multiline := fs.Bool("multiline", false, "read the value as several lines")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return ErrUsage
	}

	var data string
	if *multiline {
		v, err := GetMultiline(a.reader, "Secret value", a.out)
		if err != nil {
			return err
		}
		data = v
	} else {
		v, err := getHidden("Secret value", a.out)
		if err != nil {
			return err
		}
		data = string(v)
		common.WipeByteArray(v)
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	s, err := a.api.CreateSecret(ctx, &rpc.CreateSecretRequest{
		Title:       *title,
		Data:        data,
		Type:        *secretType,
		Description: *description,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Secret %q stored with id %s\n", s.Title, s.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	rest, err := parseArgs(newFlagSet("delete"), args, 1)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.api.DeleteSecret(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Secret deleted")
	return nil
}
