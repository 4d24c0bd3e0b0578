package cli

import (
	"flag"
	"fmt"
	"hostlogd/internal/global"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Datagram format: <filename>:<message>
Logs are written to <log path>/<sender address>/<filename>
`
)

// Prints usage for the root command or one of its direct subcommands
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, filepath.Base(os.Args[0]), fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, program string, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	usage := program
	cmdSet := rootCmd
	if command != "" && command != RootCLICommand {
		sub, ok := rootCmd.ChildCommands[command]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
		cmdSet = sub
		usage += " " + sub.CommandName
	}

	if len(cmdSet.ChildCommands) > 0 {
		usage += " <command>"
	}
	if cmdSet.UsageOption != "" {
		usage += " " + cmdSet.UsageOption
	}
	fmt.Fprintf(out, "Usage: %s\n\n", usage)

	if cmdSet == rootCmd {
		fmt.Fprintf(out, "%s\n%s\n\n", cmdSet.Description, cmdSet.FullDescription)
	} else if cmdSet.FullDescription != "" {
		fmt.Fprintf(out, "  %s\n\n", cmdSet.FullDescription)
	}

	if len(cmdSet.ChildCommands) > 0 {
		names := make([]string, 0, len(cmdSet.ChildCommands))
		width := 0
		for name := range cmdSet.ChildCommands {
			names = append(names, name)
			width = max(width, len(name))
		}
		sort.Strings(names)

		fmt.Fprintln(out, "  Commands:")
		for _, name := range names {
			fmt.Fprintf(out, "    %-*s  %s\n", width, name, cmdSet.ChildCommands[name].Description)
		}
		fmt.Fprintln(out)
	}

	writeFlagOptions(out, fs)

	if cmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

type flagLine struct {
	short string // "-p" or empty
	long  string // "--port" or empty
	usage string
	def   string
}

func (line flagLine) label() (text string) {
	switch {
	case line.short != "" && line.long != "":
		text = line.short + ", " + line.long
	case line.short != "":
		text = line.short
	default:
		text = "    " + line.long // keeps long names in the same column as paired ones
	}
	return
}

// Short and long spellings of one option share a usage string and print on one line
func writeFlagOptions(out io.Writer, fs *flag.FlagSet) {
	byUsage := make(map[string]*flagLine)
	var lines []*flagLine
	fs.VisitAll(func(arg *flag.Flag) {
		line, seen := byUsage[arg.Usage]
		if !seen {
			line = &flagLine{usage: arg.Usage, def: arg.DefValue}
			byUsage[arg.Usage] = line
			lines = append(lines, line)
		}
		if len(arg.Name) == 1 {
			line.short = "-" + arg.Name
		} else {
			line.long = "--" + arg.Name
		}
	})
	if len(lines) == 0 {
		return
	}

	sort.Slice(lines, func(a, b int) bool {
		return strings.TrimLeft(lines[a].label(), " -") < strings.TrimLeft(lines[b].label(), " -")
	})

	width := 0
	for _, line := range lines {
		width = max(width, len(line.label()))
	}

	fmt.Fprintln(out, "  Options:")
	for _, line := range lines {
		desc := line.usage
		switch line.def {
		case "", "false", "0":
		default:
			desc += " [default: " + line.def + "]"
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, line.label(), desc)
	}
}
