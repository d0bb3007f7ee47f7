package progress

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/levelup/internal/cli"
	"github.com/julianstephens/levelup/internal/submission"
)

type SubmitCmd struct {
	File string `arg:"" help:"Submission TOML file with [[inputs]] entries." type:"existingfile"`
	Date string `help:"Date to log (YYYY-MM-DD). Overrides the file; defaults to today."`
}

// LoadSubmission reads a submission file and fills the user and date from
// the caller when the file leaves them out.
func LoadSubmission(path, userID, date string) (submission.Submission, error) {
	fh, err := os.Open(path)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("failed to open submission: %w", err)
	}
	defer fh.Close()

	var sub submission.Submission
	if err := toml.NewDecoder(fh).DisallowUnknownFields().Decode(&sub); err != nil {
		return submission.Submission{}, fmt.Errorf("failed to decode submission %s: %w", path, err)
	}
	if sub.UserID == "" {
		sub.UserID = userID
	}
	if date != "" {
		sub.Date = date
	}
	return sub, nil
}

func (c *SubmitCmd) Run(ctx *cli.Context) error {
	app, err := ctx.App()
	if err != nil {
		return err
	}

	sub, err := LoadSubmission(c.File, ctx.UserID, c.Date)
	if err != nil {
		return err
	}
	if sub.Date == "" {
		if sub.Date, err = ctx.Today(); err != nil {
			return err
		}
	}

	res, err := app.Coordinator.Submit(context.Background(), sub)
	if err != nil {
		return err
	}
	cli.RenderResult(ctx.Out, res)
	return nil
}
