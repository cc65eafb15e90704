package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/gkobilansky/abreport/internal/form"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const defaultTestLength = 14 * 24 * time.Hour

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new A/B test interactively",
	Long: `Create a new A/B test by answering a few questions. The questions
mirror the fields of the web form at /new.

Example:
  abreport new --store sqlite`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

// asker is the terminal the questions are put to.
type asker interface {
	Ask(label, def string, validate func(string) error) (string, error)
	Choose(label string, items []string) (int, error)
}

type promptAsker struct{}

func (promptAsker) Ask(label, def string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}
	return prompt.Run()
}

func (promptAsker) Choose(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	idx, _, err := prompt.Run()
	return idx, err
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	d := form.New()
	if err := askDraft(promptAsker{}, d, now()); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		return err
	}

	return withStore(cfg, func(s store.Store) error {
		test, err := createFromDraft(context.Background(), s, d, uuid.NewString())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created test '%s' (id %s)\n", test.Name, test.ID)
		fmt.Fprintf(out, "Report: http://localhost:%d/report/%s\n", cfg.Server.Port, test.ID)
		warnIfEphemeral(cmd, cfg.Store.Driver)
		return nil
	})
}

func createFromDraft(ctx context.Context, s store.Store, d *form.Draft, id string) (*store.Test, error) {
	test, err := d.Build(id, now().UTC())
	if err != nil {
		return nil, err
	}

	created, err := s.CreateTest(ctx, test)
	if err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return created, nil
}

// askDraft walks through every field of d in form order.
func askDraft(a asker, d *form.Draft, today time.Time) error {
	name, err := a.Ask("Test name", d.Name, required)
	if err != nil {
		return err
	}
	d.SetName(name)

	description, err := a.Ask("Description", d.Description, nil)
	if err != nil {
		return err
	}
	d.SetDescription(description)

	testURL, err := a.Ask("Test URL", d.TestURL, validURL)
	if err != nil {
		return err
	}
	d.SetTestURL(testURL)

	start, err := askDate(a, "Start date (YYYY-MM-DD)", today)
	if err != nil {
		return err
	}
	d.SetStartDate(start)

	end, err := askDate(a, "End date (YYYY-MM-DD)", start.Add(defaultTestLength))
	if err != nil {
		return err
	}
	d.SetEndDate(end)

	sources := []store.DataSource{store.DataSourceManual, store.DataSourceIntegration}
	idx, err := a.Choose("Data source", []string{"Manual Input", "Integration"})
	if err != nil {
		return err
	}
	d.SetDataSource(sources[idx])

	if err := askAudience(a, d); err != nil {
		return err
	}

	split, err := a.Ask("Traffic to variant A (%)", strconv.Itoa(d.TrafficSplit.VariantA), validPercent)
	if err != nil {
		return err
	}
	share, _ := strconv.Atoi(split)
	d.SetTrafficSplit(share)

	for _, id := range []store.VariantID{store.VariantA, store.VariantB} {
		if err := askVariant(a, d, id); err != nil {
			return err
		}
	}

	return nil
}

func askDate(a asker, label string, def time.Time) (time.Time, error) {
	raw, err := a.Ask(label, def.Format(form.DateLayout), validDate)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(form.DateLayout, raw)
}

// askAudience toggles audience tags until the user picks Done.
func askAudience(a asker, d *form.Draft) error {
	for {
		items := []string{"Done"}
		for _, tag := range form.AudienceOptions {
			mark := "[ ]"
			if slices.Contains(d.TargetAudience, tag) {
				mark = "[x]"
			}
			items = append(items, mark+" "+tag)
		}

		idx, err := a.Choose("Target audience (select to toggle)", items)
		if err != nil {
			return err
		}
		if idx == 0 {
			return nil
		}
		d.ToggleAudience(form.AudienceOptions[idx-1])
	}
}

func askVariant(a asker, d *form.Draft, id store.VariantID) error {
	v, _ := d.Variants.Get(id)

	fields := []struct {
		field    form.VariantField
		label    string
		current  string
		validate func(string) error
	}{
		{form.FieldName, "Variant " + string(id) + " name", v.Name, required},
		{form.FieldDescription, "Variant " + string(id) + " description", v.Description, nil},
		{form.FieldImageURL, "Variant " + string(id) + " image URL (optional)", v.ImageURL, optionalURL},
	}

	for _, f := range fields {
		value, err := a.Ask(f.label, f.current, f.validate)
		if err != nil {
			return err
		}
		if err := d.SetVariantField(id, f.field, value); err != nil {
			return err
		}
	}
	return nil
}

func required(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}

func validURL(s string) error {
	u, err := url.ParseRequestURI(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL, e.g. https://example.com")
	}
	return nil
}

func optionalURL(s string) error {
	if s == "" {
		return nil
	}
	return validURL(s)
}

func validDate(s string) error {
	if _, err := time.Parse(form.DateLayout, s); err != nil {
		return errors.New("must be a date (YYYY-MM-DD)")
	}
	return nil
}

func validPercent(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return errors.New("must be a whole number from 0 to 100")
	}
	return nil
}
