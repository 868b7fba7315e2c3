package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"petkimlik/internal/adapters/mail"
	"petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/platform/money"
	"petkimlik/internal/seed"
)

var errNoDatabase = errors.New("this command needs a database (set DB_DSN or DB_HOST)")

func (c *cli) printLines(lines []string) {
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
}

func dryRunTag(dry bool) string {
	if dry {
		return " (dry-run, nothing written)"
	}
	return ""
}

func migrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.db == nil {
				return errNoDatabase
			}
			if err := postgres.Migrate(cmd.Context(), c.db); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "migrations applied")
			return nil
		},
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.New("--file is required")
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func seedLocationsCmd(c *cli) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "seed-locations",
		Short: "Import provinces, districts and neighborhoods from a CSV (il,ilce[,mahalle])",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openInput(file)
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := c.svc.Locations.ImportCSV(cmd.Context(), f, dryRun)
			if err != nil {
				return err
			}
			c.printLines(st.Lines)
			fmt.Fprintf(c.out, "rows=%d skipped=%d provinces=%d districts=%d neighborhoods=%d%s\n",
				st.Rows, st.Skipped, st.ProvincesCreated, st.DistrictsCreated, st.NeighborhoodsCreated, dryRunTag(dryRun))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file path, - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	return cmd
}

func loadBreedsCmd(c *cli) *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "load-breeds",
		Short: "Import species and breeds from a CSV (tür,ırk)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openInput(file)
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := c.svc.Pets.ImportBreedsCSV(cmd.Context(), f, dryRun)
			if err != nil {
				return err
			}
			c.printLines(st.Lines)
			fmt.Fprintf(c.out, "rows=%d skipped=%d species=%d breeds=%d%s\n",
				st.Rows, st.Skipped, st.SpeciesCreated, st.BreedsCreated, dryRunTag(dryRun))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file path, - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	return cmd
}

func fixDuplicateEmailsCmd(c *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix-duplicate-emails",
		Short: "Deactivate duplicate accounts sharing the same normalised email",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.svc.Accounts.FixDuplicateEmails(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			c.printLines(rep.Lines)
			fmt.Fprintf(c.out, "groups=%d updated=%d%s\n", rep.Groups, rep.Updated, dryRunTag(dryRun))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	return cmd
}

func fixDuplicatePhonesCmd(c *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix-duplicate-phones",
		Short: "Normalise phones to E.164 and clear duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.svc.Accounts.FixDuplicatePhones(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			c.printLines(rep.Lines)
			fmt.Fprintf(c.out, "groups=%d updated=%d cleared=%d%s\n", rep.Groups, rep.Updated, rep.Cleared, dryRunTag(dryRun))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	return cmd
}

func stockWarningCmd(c *cli) *cobra.Command {
	var threshold int
	cmd := &cobra.Command{
		Use:   "stock-warning",
		Short: "Mail the admin the products at or below their low-stock threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			mailer := mail.New(c.cfg.Mail, c.log)
			res, err := c.svc.Catalog.StockWarning(cmd.Context(), mailer, c.cfg.Mail.AdminEmail, threshold)
			if err != nil {
				return err
			}
			for _, p := range res.Products {
				fmt.Fprintf(c.out, "%s\t%s\t%d\n", p.Slug, p.Name, p.Stock)
			}
			if !res.Sent {
				fmt.Fprintln(c.out, "no low-stock products, nothing sent")
				return nil
			}
			fmt.Fprintf(c.out, "warning sent to %s (%d products)\n", c.cfg.Mail.AdminEmail, len(res.Products))
			return nil
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Override every product's threshold (0 = per product)")
	return cmd
}

func expireListingsCmd(c *cli) *cobra.Command {
	var (
		days   int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "expire-listings",
		Short: "Expire active listings older than N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			expired, err := c.svc.Listings.ExpireOlderThan(cmd.Context(), days, dryRun)
			if err != nil {
				return err
			}
			for _, l := range expired {
				fmt.Fprintf(c.out, "%s\t%s\t%s\n", l.ID, l.CreatedAt.Format("2006-01-02"), l.Title)
			}
			fmt.Fprintf(c.out, "expired=%d%s\n", len(expired), dryRunTag(dryRun))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Age in days (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without writing")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

func generateTagsCmd(c *cli) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate-tags",
		Short: "Create a batch of unassigned QR tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := c.svc.Tags.GenerateBatch(cmd.Context(), count)
			if err != nil {
				return err
			}
			for _, t := range batch {
				fmt.Fprintf(c.out, "%s\t%s\n", t.Code, c.svc.Tags.PublicURL(t.Code))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Number of tags (required)")
	_ = cmd.MarkFlagRequired("count")
	return cmd
}

func issueShopCardCmd(c *cli) *cobra.Command {
	var (
		amount int64
		days   int
	)
	cmd := &cobra.Command{
		Use:   "issue-shop-card",
		Short: "Issue a shop card with a balance in kuruş",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := c.svc.ShopCards.Issue(cmd.Context(), amount, days)
			if err != nil {
				return err
			}
			expires := "never"
			if card.ExpiresAt != nil {
				expires = card.ExpiresAt.Format("2006-01-02")
			}
			fmt.Fprintf(c.out, "%s\t%s\texpires=%s\n", card.Code, money.Format(card.BalanceKurus), expires)
			return nil
		},
	}
	cmd.Flags().Int64Var(&amount, "amount", 0, "Balance in kuruş (required)")
	cmd.Flags().IntVar(&days, "days", 0, "Days until expiry (0 = no expiry)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func seedFixturesCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed-fixtures",
		Short: "Load idempotent sample data (admin, owner, vet, catalog, credit packages)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.App.Environment == "production" && !force {
				return errors.New("refusing to seed a production environment without --force")
			}
			rep, err := seed.Run(cmd.Context(), c.svc.SeedServices(), c.log)
			if err != nil {
				return err
			}
			for _, l := range rep.Created {
				fmt.Fprintln(c.out, "created", l)
			}
			for _, l := range rep.Skipped {
				fmt.Fprintln(c.out, "skipped", l)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Allow seeding in production")
	return cmd
}
