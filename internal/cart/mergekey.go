package cart

import "fmt"

// LineInput captures an item being added to the cart. Pointer fields are
// optional; Image is accepted as a fallback for Thumb.
type LineInput struct {
	ID             *string
	Slug           *string
	SKU            *string
	Name           string
	PriceCents     int
	BasePriceCents *int
	OptionID       *string
	OptionLabel    *string
	DeliveryCents  int
	Thumb          *string
	Image          *string
	// IncludeThumb controls whether the image reference participates in the
	// merge key. Nil means true, so visually distinct variants stay on
	// separate lines.
	IncludeThumb *bool
}

const defaultOptionKey = "base"

// MergeKey derives the composite key that decides whether two additions are
// the same cart line. Two inputs with equal base identity, option, and image
// reference fold into one line. Clients that serialize absent JS values send
// the literal strings "undefined" or "null"; those count as absent.
func MergeKey(in LineInput) string {
	base := firstNonEmpty(scrub(deref(in.ID)), scrub(deref(in.Slug)), scrub(deref(in.SKU)), scrub(in.Name))

	opt := defaultOptionKey
	if in.OptionID != nil {
		if v := scrub(*in.OptionID); v != "" {
			opt = v
		}
	}

	if in.IncludeThumb != nil && !*in.IncludeThumb {
		return fmt.Sprintf("%s::%s", base, opt)
	}

	pic := scrub(deref(in.Thumb))
	if pic == "" {
		pic = scrub(deref(in.Image))
	}
	return fmt.Sprintf("%s::%s::%s", base, opt, pic)
}

func scrub(s string) string {
	switch s {
	case "undefined", "null":
		return ""
	}
	return s
}

// ThumbRef resolves the image reference stored on the line, preferring Thumb
// over Image.
func (in LineInput) ThumbRef() *string {
	if in.Thumb != nil {
		return in.Thumb
	}
	return in.Image
}

// BasePrice resolves the option-free unit price, falling back to the unit
// price when none was provided.
func (in LineInput) BasePrice() int {
	if in.BasePriceCents != nil {
		return *in.BasePriceCents
	}
	return in.PriceCents
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
