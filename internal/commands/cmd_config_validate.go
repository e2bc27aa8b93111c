package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/kode4food/courier/internal/styles"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "pingpong config validate [options]",
				Description: "Validates the configuration file, checking topic names, sender ids, durations and the overflow policy.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	err := cmd.flags.Config.Validate()
	w := c.Root().Writer

	if cmd.format == "json" {
		return cmd.outputJSON(w, err)
	}
	return cmd.outputText(w, err)
}

func (cmd *ConfigValidateCmd) outputJSON(w io.Writer, validationErr error) error {
	type fieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	out := struct {
		Valid  bool         `json:"valid"`
		Errors []fieldError `json:"errors,omitempty"`
	}{
		Valid: validationErr == nil,
	}

	for _, fe := range extractFieldErrors(validationErr) {
		out.Errors = append(out.Errors, fieldError{Field: fe.Field, Message: fe.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// extractFieldErrors extracts field errors from a validation error.
func extractFieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, validationErr error) error {
	if validationErr == nil {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render(styles.Check+" Configuration is valid"))
		return nil
	}

	fieldErrs := extractFieldErrors(validationErr)
	_, _ = fmt.Fprintln(w, styles.TitleStyle.Render("Errors"))
	for _, fe := range fieldErrs {
		line := "  " + styles.ErrorStyle.Render(styles.Cross) + " "
		if fe.Field != "" {
			line += styles.MutedStyle.Render(fe.Field+": ")
		}
		_, _ = fmt.Fprintln(w, line+fe.Err.Error())
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(fieldErrs))))
	return cli.Exit("", 1)
}
