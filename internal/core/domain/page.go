package domain

import "time"

// A PageView is the visible slice of a result set.
type PageView struct {
	Items       []Product
	CurrentPage int
	TotalPages  int
}

type PageLinkKind string

const (
	PageLinkPrev     PageLinkKind = "prev"
	PageLinkPage     PageLinkKind = "page"
	PageLinkEllipsis PageLinkKind = "ellipsis"
	PageLinkNext     PageLinkKind = "next"
)

type PageLink struct {
	Kind     PageLinkKind
	Number   int
	Active   bool
	Disabled bool
}

type BlogPost struct {
	ID       int
	Title    string
	Excerpt  string
	Date     time.Time
	Image    string
	Category string
}

type ChatMessage struct {
	Sender string
	Text   string
}
