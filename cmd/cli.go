package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agnosto/chirp/compose"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"github.com/agnosto/chirp/timeline"
	"github.com/agnosto/chirp/ui"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Liker likes posts that are not necessarily loaded in a timeline.
type Liker interface {
	Like(ctx context.Context, id int64) (posts.Post, error)
	Unlike(ctx context.Context, id int64) (posts.Post, error)
}

// Snapshot reads the cached timeline.
type Snapshot interface {
	RecentPosts(ctx context.Context) ([]posts.Post, error)
}

// CLI runs one-shot commands. Store and Cache may be nil.
type CLI struct {
	Controller *timeline.Controller
	Composer   *compose.Composer
	Liker      Liker
	Store      timeline.Store
	Cache      Snapshot
	Out        io.Writer
	Progress   io.Writer
	Now        func() time.Time
}

var (
	handleColor = color.New(color.FgCyan)
	likedColor  = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
	okColor     = color.New(color.FgGreen)
)

func (c *CLI) Run(ctx context.Context, flags Flags) error {
	switch {
	case flags.Post != "":
		created, err := c.Composer.Publish(ctx, flags.Post)
		if err != nil {
			return err
		}
		okColor.Fprintf(c.Out, "Posted %d\n", created.ID)
		return nil

	case flags.Like != 0:
		return c.like(ctx, flags.Like, true)

	case flags.Unlike != 0:
		return c.like(ctx, flags.Unlike, false)

	case flags.Cached:
		if c.Cache == nil {
			return errors.New("no local cache available")
		}
		cached, err := c.Cache.RecentPosts(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		c.printPosts(cached)
		return nil

	default:
		return c.timeline(ctx, flags.Pages)
	}
}

func (c *CLI) like(ctx context.Context, id int64, like bool) error {
	var p posts.Post
	var err error
	if like {
		p, err = c.Liker.Like(ctx, id)
	} else {
		p, err = c.Liker.Unlike(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("toggle like on %d: %w", id, err)
	}
	if c.Store != nil {
		if err := c.Store.SaveTimeline(ctx, []posts.Post{p}); err != nil {
			logger.Logger.Printf("[WARN] Failed to cache post %d: %v", id, err)
		}
	}
	c.printPosts([]posts.Post{p})
	return nil
}

func (c *CLI) timeline(ctx context.Context, pages int) error {
	if err := c.Controller.Refresh(ctx); err != nil {
		return err
	}

	if pages > 0 {
		bar := progressbar.NewOptions(pages,
			progressbar.OptionSetWriter(c.Progress),
			progressbar.OptionSetDescription("Loading older posts"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
		)
		for i := 0; i < pages; i++ {
			added, err := c.Controller.LoadMore(ctx)
			if errors.Is(err, timeline.ErrNoCursor) {
				break
			}
			if err != nil {
				bar.Exit()
				return err
			}
			bar.Add(1)
			if added == 0 {
				break
			}
		}
		bar.Finish()
		fmt.Fprintln(c.Progress)
	}

	c.printPosts(c.Controller.Items())
	return nil
}

func (c *CLI) printPosts(list []posts.Post) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	for _, p := range list {
		line := fmt.Sprintf("%d  %s %s", p.ID, p.User.Name, handleColor.Sprint("@"+p.User.ScreenName))
		if age := ui.RelativeTime(p.CreatedAt, now()); age != "" {
			line += dimColor.Sprint(" · " + age)
		}
		fmt.Fprintln(c.Out, line)
		fmt.Fprintln(c.Out, "    "+strings.ReplaceAll(p.Body, "\n", "\n    "))

		likes := "♡ " + ui.FormatCount(p.LikeCount)
		if p.Liked {
			likes = likedColor.Sprint("♥ " + ui.FormatCount(p.LikeCount))
		}
		if p.HasMedia() {
			likes += "  " + p.MediaURL
		}
		fmt.Fprintln(c.Out, "    "+likes)
	}
}
