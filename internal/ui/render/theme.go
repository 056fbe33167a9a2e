package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background    tcell.Color
	Foreground    tcell.Color
	HeaderBg      tcell.Color
	HeaderFg      tcell.Color
	SenderFg      tcell.Color
	MySenderFg    tcell.Color
	TimestampFg   tcell.Color
	ReactionFg    tcell.Color
	MediaFg       tcell.Color
	MetaFg        tcell.Color
	MatchBg       tcell.Color
	MatchFg       tcell.Color
	MarkerFg      tcell.Color
	TransientBg   tcell.Color
	PlaceholderFg tcell.Color
	SelectionBg   tcell.Color
	SelectionFg   tcell.Color
	PanelBg       tcell.Color
	PanelFg       tcell.Color
	FooterBg      tcell.Color
	FooterFg      tcell.Color
	ErrorFg       tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:    tcell.ColorDefault,
		Foreground:    tcell.ColorDefault,
		HeaderBg:      tcell.ColorDefault,
		HeaderFg:      tcell.ColorDefault,
		SenderFg:      tcell.Color33,
		MySenderFg:    tcell.Color44,
		TimestampFg:   tcell.ColorLightSlateGray,
		ReactionFg:    tcell.Color214,
		MediaFg:       tcell.Color141,
		MetaFg:        tcell.ColorLightSlateGray,
		MatchBg:       tcell.Color226, // yellow marker for live matches
		MatchFg:       tcell.ColorBlack,
		MarkerFg:      tcell.Color33,
		TransientBg:   tcell.Color236, // brief backdrop after a jump
		PlaceholderFg: tcell.Color238,
		SelectionBg:   tcell.Color33,
		SelectionFg:   tcell.ColorWhite,
		PanelBg:       tcell.Color234,
		PanelFg:       tcell.Color252,
		FooterBg:      tcell.ColorDefault,
		FooterFg:      tcell.ColorDefault,
		ErrorFg:       tcell.ColorRed,
	}
}
