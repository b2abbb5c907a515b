package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/daovote/internal/usecase"
)

// ConfigRenderer renders `daovote config` output
type ConfigRenderer struct {
	out io.Writer
}

func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// RenderConfig shows the stored defaults next to the values commands will
// actually use
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	path := getRelativePath(result.ConfigPath)
	stored := func(v string) string {
		if v == "" {
			return mutedStyle.Sprint("(not set)")
		}
		return v
	}

	if result.Exists {
		fmt.Fprintf(r.out, "📁 %s\n", path)
		writeFields(r.out, [][2]string{
			{"From", stored(result.Config.From)},
			{"Store", stored(result.Config.Store)},
		})
	} else {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("No %s; set defaults with `daovote config set`", path)))
	}

	eff := result.Effective
	sender := mutedStyle.Sprint("(none, --from required)")
	switch {
	case eff.SenderError != "":
		sender = FormatError(eff.SenderError)
	case eff.SenderAddress != nil:
		sender = fmt.Sprintf("%s (%s)", eff.From, formatAddress(*eff.SenderAddress))
	}
	source := result.ConfigSource
	if source == "" {
		source = mutedStyle.Sprint("(no daovote.toml)")
	}

	fmt.Fprintln(r.out, "\n⚙️  Effective settings:")
	writeFields(r.out, [][2]string{
		{"Sender", sender},
		{"Store", eff.Store},
		{"Data dir", getRelativePath(eff.DataDir)},
		{"Project file", source},
	})
	return nil
}

func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	value := result.Value
	if result.SenderAddress != nil {
		value = fmt.Sprintf("%s (%s)", value, formatAddress(*result.SenderAddress))
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s to %s", result.Key, value)))
	fmt.Fprintf(r.out, "📁 %s\n", getRelativePath(result.ConfigPath))
	return nil
}

func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	if result.RemovedValue == "" {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s was not set", result.Key)))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s (was %s)", result.Key, result.RemovedValue)))
	if result.FileRemoved {
		fmt.Fprintf(r.out, "📁 %s deleted, no defaults left\n", getRelativePath(result.ConfigPath))
	}
	return nil
}
