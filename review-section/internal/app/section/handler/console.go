package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"reviewsection/pkg/logger"
	"reviewsection/pkg/rating"
	"reviewsection/review-section/internal/app/section/entity"
	"reviewsection/review-section/internal/app/section/service"
	"reviewsection/review-section/internal/app/section/widget"
)

const (
	filledGlyph   = "★"
	unfilledGlyph = "☆"
)

const helpText = `commands:
  hover <n>        preview n stars (1-based)
  unhover          stop previewing
  click <n>        select n stars
  comment <text>   set the review comment
  upload <path...> attach image files
  submit           send the review
  refresh          reload reviews
  show             print the section
  quit
`

// Console - текстовый интерфейс секции отзывов. Он же служит приемником уведомлений.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	avatar   *widget.UserAvatar
	images   *widget.ReviewImages
	readFile func(name string) ([]byte, error)
}

func NewConsole(out io.Writer, avatar *widget.UserAvatar, images *widget.ReviewImages) *Console {
	return &Console{
		out:      out,
		avatar:   avatar,
		images:   images,
		readFile: os.ReadFile,
	}
}

// Show печатает уведомление; вызывается из цикла событий секции
func (c *Console) Show(toast entity.Toast) {
	c.printf("[%s] %s: %s\n", toast.Severity, toast.Title, toast.Message)
}

// Run читает команды до EOF, quit или отмены ctx
func (c *Console) Run(ctx context.Context, in io.Reader, section *service.ReviewSection) error {
	scanner := bufio.NewScanner(in)
	c.printf("%s", helpText)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if err := c.Execute(ctx, section, line); err != nil {
			if errors.Is(err, service.ErrSectionStopped) {
				return err
			}
			c.printf("error: %v\n", err)
		}
	}

	return scanner.Err()
}

// Execute выполняет одну команду
func (c *Console) Execute(ctx context.Context, section *service.ReviewSection, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help":
		c.printf("%s", helpText)
		return nil
	case "hover":
		n, err := starNumber(rest)
		if err != nil {
			return err
		}
		if err := section.Hover(ctx, n-1); err != nil {
			return err
		}
	case "unhover":
		if err := section.Unhover(ctx); err != nil {
			return err
		}
	case "click":
		n, err := starNumber(rest)
		if err != nil {
			return err
		}
		if err := section.Click(ctx, n-1); err != nil {
			return err
		}
	case "comment":
		if err := section.SetComment(ctx, rest); err != nil {
			return err
		}
	case "upload":
		files, err := c.loadFiles(strings.Fields(rest))
		if err != nil {
			return err
		}
		uploaded, err := section.Upload(ctx, files)
		if err != nil {
			return err
		}
		for _, f := range uploaded {
			c.printf("uploaded %s (%s) id=%s\n", f.Name, f.Icon, f.ID)
		}
	case "submit":
		err := section.Submit(ctx)
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			// Ошибки полей показываются в форме, не уведомлением
		case err != nil:
			var subErr *service.SubmissionError
			if !errors.As(err, &subErr) {
				return err
			}
			logger.Debug().Err(err).Msg("Submission failed")
		}
	case "refresh":
		if err := section.Refresh(ctx); err != nil {
			c.printf("refresh failed, showing last known reviews\n")
		}
	case "show":
	default:
		return fmt.Errorf("unknown command %q, type help", name)
	}

	view, err := section.Snapshot(ctx)
	if err != nil {
		return err
	}
	c.render(ctx, view)
	return nil
}

func (c *Console) render(ctx context.Context, view service.View) {
	var b strings.Builder

	fmt.Fprintf(&b, "product %s, %d reviews\n", view.ProductID, len(view.Reviews))

	b.WriteString("rating: ")
	for _, star := range view.Stars {
		if star.State == widget.Filled {
			b.WriteString(filledGlyph)
		} else {
			b.WriteString(unfilledGlyph)
		}
	}
	fmt.Fprintf(&b, " %d/%d", view.SelectedRating, len(view.Stars))
	if view.FieldErrors.Rating {
		b.WriteString("  <- please select a rating")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "comment: %q", view.Draft.Comment)
	if view.FieldErrors.Comment {
		b.WriteString("  <- please write a comment")
	}
	b.WriteString("\n")

	if len(view.Draft.AttachedImageIDs) > 0 {
		fmt.Fprintf(&b, "attached images: %s\n", strings.Join(view.Draft.AttachedImageIDs, ", "))
	}

	submit := "disabled"
	if view.CanSubmit {
		submit = "enabled"
	}
	fmt.Fprintf(&b, "submit: %s (%s)\n", submit, view.Status)

	if len(view.Distribution) > 0 {
		b.WriteString("distribution:\n")
		for i := len(view.Distribution) - 1; i >= 0; i-- {
			renderEntry(&b, view.Distribution[i])
		}
	}

	if view.HasUserCommented {
		b.WriteString("you have already reviewed this product\n")
	}

	for _, review := range view.Reviews {
		avatar := c.avatar.Resolve(ctx, review.UserID)
		fmt.Fprintf(&b, "- [%s] %s %s %s\n", avatar.Initials, avatar.Name, strings.Repeat(filledGlyph, review.Rating), review.Comment)
		if len(review.ImageIDs) > 0 {
			for _, u := range c.images.URLs(ctx, review.ID) {
				fmt.Fprintf(&b, "    %s\n", u)
			}
		}
	}

	if view.LastFetchError != nil {
		b.WriteString("reviews may be out of date\n")
	}

	c.printf("%s", b.String())
}

func renderEntry(b *strings.Builder, entry rating.Entry) {
	fmt.Fprintf(b, "  %-5s %6s%%  (%d)\n", entry.Stars, entry.PercentageString(), entry.Count)
}

func (c *Console) loadFiles(paths []string) ([]entity.UploadFile, error) {
	if len(paths) == 0 {
		return nil, errors.New("upload needs at least one file path")
	}

	files := make([]entity.UploadFile, 0, len(paths))
	for _, p := range paths {
		content, err := c.readFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, entity.UploadFile{Name: filepath.Base(p), Content: content})
	}
	return files, nil
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func starNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a star number, got %q", arg)
	}
	return n, nil
}
