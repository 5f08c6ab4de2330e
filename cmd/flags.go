package cmd

import (
	"flag"
	"io"
	"os"
)

type Flags struct {
	Timeline bool
	Pages    int
	Post     string
	Like     int64
	Unlike   int64
	Cached   bool
	Version  bool
}

func ParseFlags() Flags {
	// flag.CommandLine exits on a parse error.
	flags, _ := parseFlags(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseArgs parses args without touching the process-wide flag set.
func ParseArgs(args []string) (Flags, error) {
	fs := flag.NewFlagSet("chirp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return parseFlags(fs, args)
}

func parseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	flags := Flags{}

	fs.BoolVar(&flags.Timeline, "t", false, "Print the home timeline")
	fs.BoolVar(&flags.Timeline, "timeline", false, "Print the home timeline")
	fs.IntVar(&flags.Pages, "p", 0, "Load this many older pages after the first one")
	fs.IntVar(&flags.Pages, "pages", 0, "Load this many older pages after the first one")
	fs.StringVar(&flags.Post, "post", "", "Publish a new post")
	fs.Int64Var(&flags.Like, "like", 0, "Like the post with this id")
	fs.Int64Var(&flags.Unlike, "unlike", 0, "Remove your like from the post with this id")
	fs.BoolVar(&flags.Cached, "cached", false, "Print the cached timeline without going online")
	fs.BoolVar(&flags.Version, "v", false, "Display version information")
	fs.BoolVar(&flags.Version, "version", false, "Display version information")

	err := fs.Parse(args)
	return flags, err
}

// IsCLIMode reports whether a one-shot command was requested instead of the TUI.
func (f Flags) IsCLIMode() bool {
	return f.Timeline || f.Pages > 0 || f.Post != "" || f.Like != 0 || f.Unlike != 0 || f.Cached
}
