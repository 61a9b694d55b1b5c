package links

// DisplayRecord is the rendering-ready form of an entry.
type DisplayRecord struct {
	Key         string
	Title       string
	Description string
	Icon        Icon
	URL         string
	BgImage     string
	Color       string
	BgColor     string
	Featured    bool
	Hidden      bool
	Size        Size
	IsSubPage   bool
	Pages       Links
}

// HasCustomBackground reports whether the card overrides its background.
func (r DisplayRecord) HasCustomBackground() bool {
	return r.BgImage != "" || r.BgColor != ""
}

// Normalize converts an entry to a DisplayRecord. It is pure: the same key
// and entry always produce the same record.
func Normalize(key string, e Entry) DisplayRecord {
	switch e.Kind() {
	case KindLink:
		l, _ := e.Link()
		return DisplayRecord{
			Key:         key,
			Title:       l.Title,
			Description: l.Description,
			Icon:        iconFor(key, l.Icon),
			URL:         l.URL,
			BgImage:     l.BgImage,
			Color:       l.Color,
			BgColor:     l.BgColor,
			Featured:    l.Featured,
			Hidden:      l.Hidden,
			Size:        sizeOrDefault(l.Size),
		}
	case KindSubPage:
		p, _ := e.SubPage()
		return DisplayRecord{
			Key:         key,
			Title:       p.Title,
			Description: p.Description,
			Icon:        iconFor(key, p.Icon),
			BgImage:     p.BgImage,
			Color:       p.Color,
			BgColor:     p.BgColor,
			Featured:    p.Featured,
			Hidden:      p.Hidden,
			Size:        sizeOrDefault(p.Size),
			IsSubPage:   true,
			Pages:       p.Pages,
		}
	default:
		return DisplayRecord{
			Key:   key,
			Title: SocialDisplayName(key),
			Icon:  SocialIcon(key),
			URL:   e.URL(),
			Size:  SizeMedium,
		}
	}
}

// Visible normalizes every non-hidden entry of l in display order.
func Visible(l Links) []DisplayRecord {
	records := make([]DisplayRecord, 0, l.Len())
	for k, e := range l.All() {
		if e.Hidden() {
			continue
		}
		records = append(records, Normalize(k, e))
	}
	return records
}

func iconFor(key, explicit string) Icon {
	if explicit != "" {
		return SocialIcon(explicit)
	}
	return SocialIcon(key)
}

func sizeOrDefault(s Size) Size {
	if s == "" {
		return SizeMedium
	}
	return s
}

// CarriedPages reports whether a rich link was demoted from a nested
// sub-page declaration.
func (l Link) CarriedPages() bool { return l.carriedPages }

// MistypedFields lists the fields that were dropped while decoding because
// their JSON type did not match.
func (l Link) MistypedFields() []string { return l.mistyped }

// MistypedFields lists the fields that were dropped while decoding because
// their JSON type did not match.
func (s SubPage) MistypedFields() []string { return s.mistyped }
