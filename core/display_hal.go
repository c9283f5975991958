package core

// DisplayDriver draws whatever the core hands it. It does no formatting of
// its own beyond the numeric base.
type DisplayDriver interface {
	// ShowString replaces the display contents with s.
	ShowString(s string)

	// ShowNumber renders v in base 2, 8, 10 or 16.
	ShowNumber(v uint32, base uint8)
}
