package ir

// Property ids (spec §3 "Typed property record" / §9 property-id
// partitioning). Grounded on the original compiler's centralized
// PropertyId::from_name table: visual/content 0x01-0x1F, app/window
// 0x20-0x2F, flexbox 0x40-0x4F, positioning 0x50-0x5F, CSS grid 0x60-0x6F,
// box model 0x70-0x8F, sizing/typography/effects 0x90-0x9F, rich text
// 0xA0+.
const (
	PropBackgroundColor uint8 = 0x01
	PropForegroundColor uint8 = 0x02
	PropBorderColor     uint8 = 0x03
	PropBorderWidth     uint8 = 0x04
	PropBorderRadius    uint8 = 0x05
	PropPadding         uint8 = 0x06
	PropMargin          uint8 = 0x07
	PropTextContent     uint8 = 0x08
	PropFontSize        uint8 = 0x09
	PropFontWeight      uint8 = 0x0A
	PropTextAlignment   uint8 = 0x0B
	PropFontFamily      uint8 = 0x0C
	PropImageSource     uint8 = 0x0D
	PropOpacity         uint8 = 0x0E
	PropZIndex          uint8 = 0x0F
	PropVisibility      uint8 = 0x10
	PropGap             uint8 = 0x11
	PropMinWidth        uint8 = 0x12
	PropMinHeight       uint8 = 0x13
	PropMaxWidth        uint8 = 0x14
	PropMaxHeight       uint8 = 0x15
	PropAspectRatio     uint8 = 0x16
	PropTransform       uint8 = 0x17
	PropShadow          uint8 = 0x18
	PropWidth           uint8 = 0x19
	PropHeight          uint8 = 0x1A
	PropCustomData      uint8 = 0x1D
	PropListStyleType   uint8 = 0x1E
	PropWhiteSpace      uint8 = 0x1F

	PropWindowWidth  uint8 = 0x20
	PropWindowHeight uint8 = 0x21
	PropWindowTitle  uint8 = 0x22
	PropResizable    uint8 = 0x23
	PropKeepAspect   uint8 = 0x24
	PropScaleFactor  uint8 = 0x25
	PropIcon         uint8 = 0x26
	PropVersion      uint8 = 0x27
	PropAuthor       uint8 = 0x28
	PropCursor       uint8 = 0x29
	PropChecked      uint8 = 0x2A
	PropInputType    uint8 = 0x2B

	PropDisplay        uint8 = 0x40
	PropFlexDirection  uint8 = 0x41
	PropFlexWrap       uint8 = 0x42
	PropFlexGrow       uint8 = 0x43
	PropFlexShrink     uint8 = 0x44
	PropFlexBasis      uint8 = 0x45
	PropAlignItems     uint8 = 0x46
	PropAlignSelf      uint8 = 0x47
	PropAlignContent   uint8 = 0x48
	PropJustifyContent uint8 = 0x49
	PropJustifyItems   uint8 = 0x4A
	PropJustifySelf    uint8 = 0x4B
	PropOrder          uint8 = 0x4C

	PropPosition uint8 = 0x50
	PropLeft     uint8 = 0x51
	PropTop      uint8 = 0x52
	PropRight    uint8 = 0x53
	PropBottom   uint8 = 0x54
	PropInset    uint8 = 0x55

	PropGridTemplateColumns uint8 = 0x60
	PropGridTemplateRows    uint8 = 0x61
	PropGridTemplateAreas   uint8 = 0x62
	PropGridAutoColumns     uint8 = 0x63
	PropGridAutoRows        uint8 = 0x64
	PropGridAutoFlow        uint8 = 0x65
	PropGridArea            uint8 = 0x66
	PropGridColumn          uint8 = 0x67
	PropGridRow             uint8 = 0x68
	PropGridColumnStart     uint8 = 0x69
	PropGridColumnEnd       uint8 = 0x6A
	PropGridRowStart        uint8 = 0x6B
	PropGridRowEnd          uint8 = 0x6C
	PropGridGap             uint8 = 0x6D
	PropGridColumnGap       uint8 = 0x6E
	PropGridRowGap          uint8 = 0x6F

	PropPaddingTop             uint8 = 0x71
	PropPaddingRight           uint8 = 0x72
	PropPaddingBottom          uint8 = 0x73
	PropPaddingLeft            uint8 = 0x74
	PropMarginTop              uint8 = 0x76
	PropMarginRight            uint8 = 0x77
	PropMarginBottom           uint8 = 0x78
	PropMarginLeft             uint8 = 0x79
	PropBorderTopWidth         uint8 = 0x7A
	PropBorderRightWidth       uint8 = 0x7B
	PropBorderBottomWidth      uint8 = 0x7C
	PropBorderLeftWidth        uint8 = 0x7D
	PropBorderTopColor         uint8 = 0x7E
	PropBorderRightColor       uint8 = 0x7F
	PropBorderBottomColor      uint8 = 0x80
	PropBorderLeftColor        uint8 = 0x81
	PropBorderTopLeftRadius    uint8 = 0x82
	PropBorderTopRightRadius   uint8 = 0x83
	PropBorderBottomRightRadius uint8 = 0x84
	PropBorderBottomLeftRadius uint8 = 0x85
	PropBoxSizing              uint8 = 0x86
	PropOutline                uint8 = 0x87
	PropOutlineColor           uint8 = 0x88
	PropOutlineWidth           uint8 = 0x89
	PropOutlineOffset          uint8 = 0x8A
	PropOverflow               uint8 = 0x8B
	PropOverflowX              uint8 = 0x8C
	PropOverflowY              uint8 = 0x8D
	PropLineHeight             uint8 = 0x8E
	PropLetterSpacing          uint8 = 0x8F

	PropMinSize          uint8 = 0x90
	PropMaxSize          uint8 = 0x91
	PropPreferredSize    uint8 = 0x92
	PropTextDecoration   uint8 = 0x93
	PropTextTransform    uint8 = 0x94
	PropTextIndent       uint8 = 0x95
	PropTextOverflow     uint8 = 0x96
	PropFontStyle        uint8 = 0x97
	PropFontVariant      uint8 = 0x98
	PropWordSpacing      uint8 = 0x99
	PropBoxShadow        uint8 = 0x9A // reserved: rejected at name lookup, see DESIGN.md Open Question 3
	PropTextShadow       uint8 = 0x9B
	PropFilter           uint8 = 0x9C
	PropBackdropFilter   uint8 = 0x9D
	PropMinViewportWidth uint8 = 0x9E
	PropMaxViewportWidth uint8 = 0x9F

	PropSpans uint8 = 0xA0
)

// PropertyIDByName is the centralized property-name-to-id table (spec §9
// "property-id partitioning"), one canonical id per spelling including the
// original's hyphen/underscore aliasing.
var PropertyIDByName = map[string]uint8{
	"background_color":       PropBackgroundColor,
	"text_color":             PropForegroundColor,
	"foreground_color":       PropForegroundColor,
	"border_color":           PropBorderColor,
	"border_width":           PropBorderWidth,
	"border_radius":          PropBorderRadius,
	"padding":                PropPadding,
	"margin":                 PropMargin,
	"text":                   PropTextContent,
	"font_size":              PropFontSize,
	"font_weight":            PropFontWeight,
	"text_alignment":         PropTextAlignment,
	"font_family":            PropFontFamily,
	"src":                    PropImageSource,
	"image_source":           PropImageSource,
	"opacity":                PropOpacity,
	"z_index":                PropZIndex,
	"visibility":             PropVisibility,
	"visible":                PropVisibility,
	"gap":                    PropGap,
	"min_width":              PropMinWidth,
	"min_height":             PropMinHeight,
	"max_width":              PropMaxWidth,
	"max_height":             PropMaxHeight,
	"aspect_ratio":           PropAspectRatio,
	"transform":              PropTransform,
	"shadow":                 PropShadow,
	"width":                  PropWidth,
	"height":                 PropHeight,
	"list_style_type":        PropListStyleType,
	"list-style-type":        PropListStyleType,
	"white_space":            PropWhiteSpace,
	"white-space":            PropWhiteSpace,

	"window_width":      PropWindowWidth,
	"window_height":     PropWindowHeight,
	"window_title":      PropWindowTitle,
	"resizable":         PropResizable,
	"window_resizable":  PropResizable,
	"keep_aspect_ratio":  PropKeepAspect,
	"scale_factor":      PropScaleFactor,
	"icon":              PropIcon,
	"version":           PropVersion,
	"author":            PropAuthor,
	"cursor":            PropCursor,
	"checked":           PropChecked,
	"type":              PropInputType,

	"display":          PropDisplay,
	"flex_direction":   PropFlexDirection,
	"flex-direction":   PropFlexDirection,
	"flex_wrap":        PropFlexWrap,
	"flex-wrap":        PropFlexWrap,
	"flex_grow":        PropFlexGrow,
	"flex-grow":        PropFlexGrow,
	"flex_shrink":      PropFlexShrink,
	"flex-shrink":      PropFlexShrink,
	"flex_basis":       PropFlexBasis,
	"flex-basis":       PropFlexBasis,
	"align_items":      PropAlignItems,
	"align-items":      PropAlignItems,
	"align_self":       PropAlignSelf,
	"align-self":       PropAlignSelf,
	"align_content":    PropAlignContent,
	"align-content":    PropAlignContent,
	"justify_content":  PropJustifyContent,
	"justify-content":  PropJustifyContent,
	"justify_items":    PropJustifyItems,
	"justify-items":    PropJustifyItems,
	"justify_self":     PropJustifySelf,
	"justify-self":     PropJustifySelf,
	"order":            PropOrder,

	"position": PropPosition,
	"left":     PropLeft,
	"top":      PropTop,
	"right":    PropRight,
	"bottom":   PropBottom,
	"inset":    PropInset,

	"grid_template_columns": PropGridTemplateColumns,
	"grid-template-columns": PropGridTemplateColumns,
	"grid_template_rows":    PropGridTemplateRows,
	"grid-template-rows":    PropGridTemplateRows,
	"grid_template_areas":   PropGridTemplateAreas,
	"grid-template-areas":   PropGridTemplateAreas,
	"grid_auto_columns":     PropGridAutoColumns,
	"grid-auto-columns":     PropGridAutoColumns,
	"grid_auto_rows":        PropGridAutoRows,
	"grid-auto-rows":        PropGridAutoRows,
	"grid_auto_flow":        PropGridAutoFlow,
	"grid-auto-flow":        PropGridAutoFlow,
	"grid_area":             PropGridArea,
	"grid-area":             PropGridArea,
	"grid_column":           PropGridColumn,
	"grid-column":           PropGridColumn,
	"grid_row":              PropGridRow,
	"grid-row":              PropGridRow,
	"grid_column_start":     PropGridColumnStart,
	"grid-column-start":     PropGridColumnStart,
	"grid_column_end":       PropGridColumnEnd,
	"grid-column-end":       PropGridColumnEnd,
	"grid_row_start":        PropGridRowStart,
	"grid-row-start":        PropGridRowStart,
	"grid_row_end":          PropGridRowEnd,
	"grid-row-end":          PropGridRowEnd,
	"grid_gap":              PropGridGap,
	"grid-gap":              PropGridGap,
	"grid_column_gap":       PropGridColumnGap,
	"grid-column-gap":       PropGridColumnGap,
	"column_gap":            PropGridColumnGap,
	"grid_row_gap":          PropGridRowGap,
	"grid-row-gap":          PropGridRowGap,
	"row_gap":               PropGridRowGap,

	"padding_top":                 PropPaddingTop,
	"padding-top":                 PropPaddingTop,
	"padding_right":               PropPaddingRight,
	"padding-right":               PropPaddingRight,
	"padding_bottom":              PropPaddingBottom,
	"padding-bottom":              PropPaddingBottom,
	"padding_left":                PropPaddingLeft,
	"padding-left":                PropPaddingLeft,
	"margin_top":                  PropMarginTop,
	"margin-top":                  PropMarginTop,
	"margin_right":                PropMarginRight,
	"margin-right":                PropMarginRight,
	"margin_bottom":               PropMarginBottom,
	"margin-bottom":               PropMarginBottom,
	"margin_left":                 PropMarginLeft,
	"margin-left":                 PropMarginLeft,
	"border_top_width":            PropBorderTopWidth,
	"border-top-width":            PropBorderTopWidth,
	"border_right_width":          PropBorderRightWidth,
	"border-right-width":          PropBorderRightWidth,
	"border_bottom_width":         PropBorderBottomWidth,
	"border-bottom-width":         PropBorderBottomWidth,
	"border_left_width":           PropBorderLeftWidth,
	"border-left-width":           PropBorderLeftWidth,
	"border_top_color":            PropBorderTopColor,
	"border-top-color":            PropBorderTopColor,
	"border_right_color":          PropBorderRightColor,
	"border-right-color":          PropBorderRightColor,
	"border_bottom_color":         PropBorderBottomColor,
	"border-bottom-color":         PropBorderBottomColor,
	"border_left_color":           PropBorderLeftColor,
	"border-left-color":           PropBorderLeftColor,
	"border_top_left_radius":      PropBorderTopLeftRadius,
	"border-top-left-radius":      PropBorderTopLeftRadius,
	"border_top_right_radius":     PropBorderTopRightRadius,
	"border-top-right-radius":     PropBorderTopRightRadius,
	"border_bottom_right_radius":  PropBorderBottomRightRadius,
	"border-bottom-right-radius":  PropBorderBottomRightRadius,
	"border_bottom_left_radius":   PropBorderBottomLeftRadius,
	"border-bottom-left-radius":   PropBorderBottomLeftRadius,
	"box_sizing":                  PropBoxSizing,
	"box-sizing":                  PropBoxSizing,
	"outline":                     PropOutline,
	"outline_color":               PropOutlineColor,
	"outline-color":               PropOutlineColor,
	"outline_width":               PropOutlineWidth,
	"outline-width":               PropOutlineWidth,
	"outline_offset":              PropOutlineOffset,
	"outline-offset":              PropOutlineOffset,
	"overflow":                    PropOverflow,
	"overflow-x":                  PropOverflowX,
	"overflow-y":                  PropOverflowY,

	"line_height":         PropLineHeight,
	"line-height":         PropLineHeight,
	"letter_spacing":      PropLetterSpacing,
	"letter-spacing":      PropLetterSpacing,
	"text_decoration":     PropTextDecoration,
	"text-decoration":     PropTextDecoration,
	"text_transform":      PropTextTransform,
	"text-transform":      PropTextTransform,
	"text_indent":         PropTextIndent,
	"text-indent":         PropTextIndent,
	"text_overflow":       PropTextOverflow,
	"text-overflow":       PropTextOverflow,
	"font_style":          PropFontStyle,
	"font-style":          PropFontStyle,
	"font_variant":        PropFontVariant,
	"font-variant":        PropFontVariant,
	"word_spacing":        PropWordSpacing,
	"word-spacing":        PropWordSpacing,

	"text_shadow":         PropTextShadow,
	"text-shadow":         PropTextShadow,
	"filter":              PropFilter,
	"backdrop_filter":     PropBackdropFilter,
	"backdrop-filter":     PropBackdropFilter,
	"min_viewport_width":  PropMinViewportWidth,
	"min-viewport-width":  PropMinViewportWidth,
	"max_viewport_width":  PropMaxViewportWidth,
	"max-viewport-width":  PropMaxViewportWidth,

	"min_size":       PropMinSize,
	"min-size":       PropMinSize,
	"max_size":       PropMaxSize,
	"max-size":       PropMaxSize,
	"preferred_size": PropPreferredSize,
	"preferred-size": PropPreferredSize,

	"spans": PropSpans,
}

// rejectedPropertyNames are names the original table maps through a dead
// (unreachable) match arm rather than a real, distinct id (DESIGN.md Open
// Question 3): "box_shadow"/"box-shadow" collide with "shadow" in the
// original and kryonc rejects them instead of silently aliasing.
var rejectedPropertyNames = map[string]bool{
	"box_shadow": true,
	"box-shadow": true,
}

// IsRejectedPropertyName reports whether name is a property spelling kryonc
// refuses to accept (a semantic error), rather than either a known or a
// custom property.
func IsRejectedPropertyName(name string) bool {
	return rejectedPropertyNames[name]
}

// ElementHeaderOnlyProperties names properties that only ever populate a
// fixed element-header field (spec §4.9 "Element-header-only keys") and are
// never emitted as a typed property record or inherited through a style.
var ElementHeaderOnlyProperties = map[string]bool{
	"id":      true,
	"pos_x":   true,
	"pos_y":   true,
	"width":   true,
	"height":  true,
	"style":   true,
	"checked": true,
}
