package profile

import "github.com/iamNilotpal/epubpress/internal/core/domain"

// Defaults returns the built-in profile set.
func Defaults() []domain.Profile {
	return []domain.Profile{
		{
			Category: domain.CategoryText, Level: domain.LevelLow, DeflateLevel: 6,
			Text: &domain.TextOptions{},
		},
		{
			Category: domain.CategoryText, Level: domain.LevelMedium, DeflateLevel: 8,
			Text: &domain.TextOptions{StripComments: true, CollapseWhitespace: true},
		},
		{
			Category: domain.CategoryText, Level: domain.LevelHigh, DeflateLevel: 9,
			Text: &domain.TextOptions{StripComments: true, CollapseWhitespace: true, MinifyMarkup: true},
		},

		{
			Category: domain.CategoryImage, Level: domain.LevelLow, DeflateLevel: 6,
			Image: &domain.ImageOptions{Quality: 90, PreserveMetadata: true},
		},
		{
			Category: domain.CategoryImage, Level: domain.LevelMedium, DeflateLevel: 6,
			Image: &domain.ImageOptions{Quality: 80, MaxWidth: 1800, MaxHeight: 1800, PreserveMetadata: true},
		},
		{
			Category: domain.CategoryImage, Level: domain.LevelHigh, DeflateLevel: 9,
			Image: &domain.ImageOptions{
				Quality: 70, MaxWidth: 1500, MaxHeight: 1500, ConvertTo: domain.FormatJPEG, PreserveMetadata: true,
			},
		},

		{
			Category: domain.CategoryFont, Level: domain.LevelLow, DeflateLevel: 5,
			Font: &domain.FontOptions{Subset: domain.SubsetNone},
		},
		{
			Category: domain.CategoryFont, Level: domain.LevelMedium, DeflateLevel: 7,
			Font: &domain.FontOptions{Subset: domain.SubsetUsedOnly},
		},
		{
			Category: domain.CategoryFont, Level: domain.LevelHigh, DeflateLevel: 9,
			Font: &domain.FontOptions{Subset: domain.SubsetUsedOnly},
		},

		{Category: domain.CategoryOther, Level: domain.LevelLow, DeflateLevel: 3},
		{Category: domain.CategoryOther, Level: domain.LevelMedium, DeflateLevel: 5},
		{Category: domain.CategoryOther, Level: domain.LevelHigh, DeflateLevel: 7},
	}
}
