package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agbru/newtoncalc/internal/ui"
)

// flagGroups orders the help output. Flags missing from every group are
// listed under "Other".
var flagGroups = []struct {
	title string
	flags []string
}{
	{"Function", []string{"roots", "poles", "preset", "scene"}},
	{"Iteration", []string{"z0", "maxiter", "algo", "timeout"}},
	{"Output", []string{"json", "quiet", "q", "output", "o", "v", "no-color"}},
	{"Modes", []string{"interactive", "server", "port", "max-iter-limit", "cache-size", "completion"}},
}

// envName is the NEWTON_* variable read for a flag, or "" for shorthands
// and flags without one.
func envName(flagName string) string {
	switch flagName {
	case "q", "o", "completion":
		return ""
	case "v":
		return EnvPrefix + "VERBOSE"
	}
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// setCustomUsage installs a colored usage function on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}
		out := fs.Output()

		fmt.Fprintf(out, "\n%sNewton Basin Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Newton-Raphson iteration for f(z) = Π(z-root) / Π(z-pole).\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n", t.Warning, t.Reset, fs.Name())

		printed := make(map[string]bool)
		for _, g := range flagGroups {
			fmt.Fprintf(out, "\n%s%s:%s\n", t.Warning, g.title, t.Reset)
			for _, name := range g.flags {
				if f := fs.Lookup(name); f != nil {
					printFlag(out, f, t)
					printed[name] = true
				}
			}
		}

		header := false
		fs.VisitAll(func(f *flag.Flag) {
			if printed[f.Name] {
				return
			}
			if !header {
				fmt.Fprintf(out, "\n%sOther:%s\n", t.Warning, t.Reset)
				header = true
			}
			printFlag(out, f, t)
		})

		fmt.Fprintf(out, "\nFlags marked [%sNAME] can also be set from the environment.\n", EnvPrefix)
		fmt.Fprintf(out, "\n%sExamples:%s\n", t.Warning, t.Reset)
		fmt.Fprintf(out, "  %s -roots '1,-0.5+0.866i,-0.5-0.866i' -z0 0.4+0.9i\n", fs.Name())
		fmt.Fprintf(out, "  %s -preset anim:0.5 -z0 0.3+0.6i -algo recursive\n", fs.Name())
		fmt.Fprintf(out, "  %s -server -port 8080\n\n", fs.Name())
	}
}

func printFlag(out io.Writer, f *flag.Flag, t ui.Theme) {
	name, usage := flag.UnquoteUsage(f)
	sig := "-" + f.Name
	if name != "" {
		sig += " " + name
	}
	fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, sig, t.Reset, usage)
	if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
		fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
	}
	if env := envName(f.Name); env != "" {
		fmt.Fprintf(out, " %s[%s]%s", t.Secondary, env, t.Reset)
	}
	fmt.Fprintln(out)
}
