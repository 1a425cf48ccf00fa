package widget

import (
	"errors"
	"fmt"
)

var ErrStarIndexOutOfRange = errors.New("star index out of range")

const (
	DefaultTotalStars    = 5
	DefaultSize          = "medium"
	DefaultFilledColor   = "orange"
	DefaultUnfilledColor = "grey"

	// NeutralColorToken используется для любого нераспознанного цвета
	NeutralColorToken = "default"
)

var colorTokens = map[string]string{
	"grey":   "default",
	"green":  "success",
	"orange": "warning",
	"red":    "error",
	"white":  "inverse",
}

var sizeTokens = map[string]struct{}{
	"xx-small": {},
	"x-small":  {},
	"small":    {},
	"medium":   {},
	"large":    {},
}

// ColorToken переводит имя цвета в токен оформления, неизвестное имя дает NeutralColorToken
func ColorToken(color string) string {
	if token, ok := colorTokens[color]; ok {
		return token
	}
	return NeutralColorToken
}

type VisualState int

const (
	Unfilled VisualState = iota
	Filled
)

func (v VisualState) String() string {
	if v == Filled {
		return "filled"
	}
	return "unfilled"
}

type StarVisual struct {
	Index      int
	State      VisualState
	ColorToken string
	IconURL    string // пусто, если кастомная иконка не задана
}

type StarRatingOptions struct {
	TotalStars      int
	DefaultRating   int
	Size            string
	FilledColor     string
	UnfilledColor   string
	FilledIconURL   string
	UnfilledIconURL string
}

// StarRating - N-звездочный селектор с предпросмотром при наведении.
// Не потокобезопасен, все вызовы идут из одного цикла событий.
type StarRating struct {
	totalStars    int
	size          string
	filledToken   string
	unfilledToken string
	filledIcon    string
	unfilledIcon  string

	selected  int
	hovering  bool
	hoverStar int

	stars     []StarVisual
	listeners []func(rating int)
}

func NewStarRating(opts StarRatingOptions) *StarRating {
	total := opts.TotalStars
	if total <= 0 {
		total = DefaultTotalStars
	}

	size := opts.Size
	if _, ok := sizeTokens[size]; !ok {
		size = DefaultSize
	}

	filled := opts.FilledColor
	if filled == "" {
		filled = DefaultFilledColor
	}
	unfilled := opts.UnfilledColor
	if unfilled == "" {
		unfilled = DefaultUnfilledColor
	}

	w := &StarRating{
		totalStars:    total,
		size:          size,
		filledToken:   ColorToken(filled),
		unfilledToken: ColorToken(unfilled),
		filledIcon:    opts.FilledIconURL,
		unfilledIcon:  opts.UnfilledIconURL,
		selected:      clamp(opts.DefaultRating, 0, total),
		stars:         make([]StarVisual, total),
	}
	w.recompute()
	return w
}

// OnRatingClick регистрирует получателя события ratingclick
func (w *StarRating) OnRatingClick(fn func(rating int)) {
	w.listeners = append(w.listeners, fn)
}

func (w *StarRating) Hover(index int) error {
	if err := w.checkIndex(index); err != nil {
		return err
	}
	w.hovering = true
	w.hoverStar = index
	w.recompute()
	return nil
}

func (w *StarRating) Unhover() {
	if !w.hovering {
		return
	}
	w.hovering = false
	w.recompute()
}

// Click фиксирует оценку index+1 и уведомляет подписчиков
func (w *StarRating) Click(index int) error {
	if err := w.checkIndex(index); err != nil {
		return err
	}
	w.hovering = false
	w.selected = index + 1
	w.recompute()

	for _, fn := range w.listeners {
		fn(w.selected)
	}
	return nil
}

func (w *StarRating) TotalStars() int {
	return w.totalStars
}

func (w *StarRating) Size() string {
	return w.size
}

func (w *StarRating) SelectedRating() int {
	return w.selected
}

func (w *StarRating) Previewing() bool {
	return w.hovering
}

func (w *StarRating) EffectiveRating() int {
	if w.hovering {
		return w.hoverStar + 1
	}
	return w.selected
}

// Stars возвращает копию текущего визуального состояния
func (w *StarRating) Stars() []StarVisual {
	out := make([]StarVisual, len(w.stars))
	copy(out, w.stars)
	return out
}

func (w *StarRating) recompute() {
	effective := w.EffectiveRating()
	for i := range w.stars {
		if i < effective {
			w.stars[i] = StarVisual{Index: i, State: Filled, ColorToken: w.filledToken, IconURL: w.filledIcon}
		} else {
			w.stars[i] = StarVisual{Index: i, State: Unfilled, ColorToken: w.unfilledToken, IconURL: w.unfilledIcon}
		}
	}
}

func (w *StarRating) checkIndex(index int) error {
	if index < 0 || index >= w.totalStars {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrStarIndexOutOfRange, index, w.totalStars)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
