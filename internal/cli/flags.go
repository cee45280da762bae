package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/artpar/di/internal/core/plugin"
)

const (
	fileFlag   = "file"
	configFlag = "config"
)

// argumentFlags binds plugin argument declarations to a pflag.FlagSet.
type argumentFlags struct {
	fs    *pflag.FlagSet
	specs []plugin.ArgumentSpec
	file  *string
}

// newArgumentFlags registers one flag per non-remainder argument together with
// the document and settings file flags. Positional arguments stop flag
// parsing so they reach the container command untouched.
func newArgumentFlags(name, defaultFile string, specs []plugin.ArgumentSpec) *argumentFlags {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)

	af := &argumentFlags{fs: fs, specs: specs}
	af.file = fs.StringP(fileFlag, "f", defaultFile, "Document file.")
	fs.String(configFlag, "", "Settings file.")

	for _, def := range specs {
		if def.Remainder {
			continue
		}
		help := def.Help
		if len(def.Choices) > 0 {
			help = fmt.Sprintf("%s (one of: %s)", help, strings.Join(def.Choices, ", "))
		}
		switch def.Type {
		case "boolean":
			fs.BoolP(def.Name, def.Shorthand, false, help)
		case "integer":
			fs.IntP(def.Name, def.Shorthand, 0, help)
		case "number":
			fs.Float64P(def.Name, def.Shorthand, 0, help)
		case "array":
			fs.StringArrayP(def.Name, def.Shorthand, nil, help)
		default:
			fs.StringP(def.Name, def.Shorthand, "", help)
		}
	}
	return af
}

// parse parses args. help reports whether -h/--help was given.
func (af *argumentFlags) parse(args []string) (help bool, err error) {
	if err := af.fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return false, nil
}

// document returns the document path and whether it was given explicitly.
func (af *argumentFlags) document() (string, bool) {
	return *af.file, af.fs.Changed(fileFlag)
}

// values collects the flags that were given on the command line plus the
// positional remainder.
func (af *argumentFlags) values() (plugin.Values, error) {
	values := plugin.Values{}
	remainder := af.fs.Args()
	for _, def := range af.specs {
		if def.Remainder {
			if len(remainder) > 0 {
				items := make([]any, len(remainder))
				for i, arg := range remainder {
					items[i] = arg
				}
				values[def.Name] = items
				remainder = nil
			}
			continue
		}
		if !af.fs.Changed(def.Name) {
			continue
		}
		value, err := af.value(def)
		if err != nil {
			return nil, err
		}
		values[def.Name] = value
	}
	if len(remainder) > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q", ErrUsage, remainder)
	}
	return values, nil
}

func (af *argumentFlags) value(def plugin.ArgumentSpec) (any, error) {
	switch def.Type {
	case "boolean":
		return af.fs.GetBool(def.Name)
	case "integer":
		return af.fs.GetInt(def.Name)
	case "number":
		return af.fs.GetFloat64(def.Name)
	case "array":
		items, err := af.fs.GetStringArray(def.Name)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, nil
	default:
		value, err := af.fs.GetString(def.Name)
		if err != nil {
			return nil, err
		}
		if len(def.Choices) > 0 && !slices.Contains(def.Choices, value) {
			return nil, fmt.Errorf("%w: invalid value %q for --%s (one of: %s)",
				ErrUsage, value, def.Name, strings.Join(def.Choices, ", "))
		}
		return value, nil
	}
}

// usage writes the flag defaults and the positional remainder to w.
func (af *argumentFlags) usage(w io.Writer, command string) {
	use := "di " + command + " [flags]"
	for _, def := range af.specs {
		if def.Remainder {
			use += " [" + def.Name + "...]"
		}
	}
	fmt.Fprintf(w, "Usage:\n  %s\n\nFlags:\n%s", use, af.fs.FlagUsages())
}
