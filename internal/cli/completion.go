package cli

import (
	"fmt"
	"io"
	"strings"
)

const programName = "newtoncalc"

// completionFlag describes one command-line flag for the completion
// scripts. An empty long name means the flag only has a short form.
type completionFlag struct {
	long    string
	short   string
	desc    string
	file    bool     // completes file names
	choices []string // fixed value suggestions; nil for boolean flags
	free    bool     // takes a free-form value
}

// completionFlags lists the flags accepted by config.ParseConfig plus the
// version and help switches handled before parsing. algorithms and presets
// fill the dynamic choices.
func completionFlags(algorithms, presets []string) []completionFlag {
	return []completionFlag{
		{long: "help", short: "h", desc: "Show help message"},
		{long: "version", short: "V", desc: "Show version information"},
		{long: "maxiter", desc: "Maximum number of Newton steps", choices: []string{"30", "50", "100", "500"}},
		{long: "z0", desc: "Starting point", free: true},
		{long: "roots", desc: "Comma-separated roots", free: true},
		{long: "poles", desc: "Comma-separated poles", free: true},
		{long: "preset", desc: "Built-in scene", choices: presets},
		{long: "scene", desc: "JSON scene file", file: true},
		{short: "v", desc: "Verbose output"},
		{long: "timeout", desc: "Maximum execution time", choices: []string{"10s", "1m", "5m", "30m"}},
		{long: "algo", desc: "Engine to use", choices: append(append([]string{}, algorithms...), "all")},
		{long: "json", desc: "Output in JSON format"},
		{long: "server", desc: "Start HTTP server mode"},
		{long: "port", desc: "Server port", choices: []string{"8080", "3000", "5000", "9000"}},
		{long: "no-color", desc: "Disable colored output"},
		{long: "output", short: "o", desc: "Output file path", file: true},
		{long: "quiet", short: "q", desc: "Quiet mode for scripts"},
		{long: "interactive", desc: "Start interactive REPL mode"},
		{long: "completion", desc: "Generate completion script", choices: []string{"bash", "zsh", "fish", "powershell"}},
		{long: "max-iter-limit", desc: "Largest maxiter accepted by the server", free: true},
		{long: "cache-size", desc: "Server result cache size", choices: []string{"0", "1024", "8192"}},
	}
}

func (f completionFlag) takesValue() bool {
	return f.file || f.free || f.choices != nil
}

// names returns the spellings of f as typed on a command line.
func (f completionFlag) names() []string {
	var names []string
	if f.short != "" {
		names = append(names, "-"+f.short)
	}
	if f.long != "" {
		names = append(names, "--"+f.long)
	}
	return names
}

// GenerateCompletion writes the completion script for shell ("bash",
// "zsh", "fish" or "powershell"/"ps") to out.
func GenerateCompletion(out io.Writer, shell string, algorithms, presets []string) error {
	flags := completionFlags(algorithms, presets)
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(flags)
	case "zsh":
		script = zshCompletion(flags)
	case "fish":
		script = fishCompletion(flags)
	case "powershell", "ps":
		script = powerShellCompletion(flags)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	_, err := io.WriteString(out, script)
	return err
}

func bashCompletion(flags []completionFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Bash completion script for %s\n", programName)
	b.WriteString("# Add this to your ~/.bashrc or ~/.bash_completion\n\n")
	fmt.Fprintf(&b, "_%s_completions() {\n", programName)
	b.WriteString("    local cur prev opts\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")

	var all []string
	for _, f := range flags {
		all = append(all, f.names()...)
	}
	fmt.Fprintf(&b, "    opts=\"%s\"\n\n", strings.Join(all, " "))

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range flags {
		if !f.file && f.choices == nil {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", strings.Join(f.names(), "|"))
		if f.file {
			b.WriteString("            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n")
		} else {
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(f.choices, " "))
		}
		b.WriteString("            return 0\n            ;;\n")
	}
	b.WriteString("    esac\n\n")
	b.WriteString("    if [[ \"${cur}\" == -* ]]; then\n")
	b.WriteString("        COMPREPLY=( $(compgen -W \"${opts}\" -- \"${cur}\") )\n")
	b.WriteString("        return 0\n    fi\n}\n\n")
	fmt.Fprintf(&b, "complete -F _%s_completions %s\n", programName, programName)
	return b.String()
}

func zshCompletion(flags []completionFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n\n", programName)
	fmt.Fprintf(&b, "# Zsh completion script for %s\n", programName)
	b.WriteString("# Add this to your ~/.zshrc or place in $fpath\n\n")
	fmt.Fprintf(&b, "_%s() {\n", programName)
	b.WriteString("    _arguments -s")

	for _, f := range flags {
		var spec string
		names := f.names()
		if len(names) > 1 {
			spec = fmt.Sprintf("'(%s)'{%s}'[%s]", strings.Join(names, " "), strings.Join(names, ","), f.desc)
		} else {
			spec = fmt.Sprintf("'%s[%s]", names[0], f.desc)
		}
		switch {
		case f.file:
			spec += ":file:_files"
		case f.choices != nil:
			spec += fmt.Sprintf(":value:(%s)", strings.Join(f.choices, " "))
		case f.free:
			spec += ":value:"
		}
		b.WriteString(" \\\n        " + spec + "'")
	}
	b.WriteString("\n}\n\n")
	fmt.Fprintf(&b, "_%s \"$@\"\n", programName)
	return b.String()
}

func fishCompletion(flags []completionFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fish completion script for %s\n", programName)
	fmt.Fprintf(&b, "# Add this to ~/.config/fish/completions/%s.fish\n\n", programName)
	fmt.Fprintf(&b, "complete -c %s -f\n", programName)

	for _, f := range flags {
		line := "complete -c " + programName
		if f.short != "" {
			line += " -s " + f.short
		}
		if f.long != "" {
			line += " -l " + f.long
		}
		line += fmt.Sprintf(" -d '%s'", f.desc)
		switch {
		case f.file:
			line += " -rF"
		case f.choices != nil:
			line += fmt.Sprintf(" -xa '%s'", strings.Join(f.choices, " "))
		case f.free:
			line += " -x"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func powerShellCompletion(flags []completionFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# PowerShell completion script for %s\n", programName)
	b.WriteString("# Add this to your $PROFILE\n\n")
	fmt.Fprintf(&b, "Register-ArgumentCompleter -CommandName '%s' -Native -ScriptBlock {\n", programName)
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $options = @(\n")
	for _, f := range flags {
		for _, name := range f.names() {
			fmt.Fprintf(&b, "        @{Name = '%s'; Description = '%s' }\n", name, f.desc)
		}
	}
	b.WriteString("    )\n\n")

	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }\n\n")
	b.WriteString("    switch ($prevElement) {\n")
	for _, f := range flags {
		if f.choices == nil || !f.takesValue() {
			continue
		}
		quoted := make([]string, len(f.choices))
		for i, c := range f.choices {
			quoted[i] = "'" + c + "'"
		}
		for _, name := range f.names() {
			fmt.Fprintf(&b, "        '%s' {\n", name)
			fmt.Fprintf(&b, "            @(%s) | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n", strings.Join(quoted, ", "))
			b.WriteString("                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
			b.WriteString("            }\n            return\n        }\n")
		}
	}
	b.WriteString("    }\n\n")
	b.WriteString("    $options | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)\n")
	b.WriteString("    }\n}\n")
	return b.String()
}
