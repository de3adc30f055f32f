package enums

import (
	"strconv"
	"strings"
)

// MediaType is the kind of output a download produces.
type MediaType string

const (
	MediaTypeVideo   MediaType = "VIDEO"
	MediaTypeAudio   MediaType = "AUDIO"
	MediaTypeCommand MediaType = "COMMAND"
	MediaTypeAuto    MediaType = "AUTO"
)

// AllMediaTypes lists every media type.
func AllMediaTypes() []MediaType {
	return []MediaType{MediaTypeVideo, MediaTypeAudio, MediaTypeCommand, MediaTypeAuto}
}

// ParseMediaType matches case-insensitively and falls back to MediaTypeVideo.
func ParseMediaType(s string) MediaType {
	up := MediaType(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range AllMediaTypes() {
		if m == up {
			return m
		}
	}
	return MediaTypeVideo
}

// PreventDuplicateDownload is the admission policy used when enqueueing.
type PreventDuplicateDownload int

const (
	PreventDuplicateNone PreventDuplicateDownload = iota
	PreventDuplicateURL
	PreventDuplicateTypeAndURL
	PreventDuplicateConfiguration
)

var preventDuplicateLabels = map[PreventDuplicateDownload]string{
	PreventDuplicateNone:          "Disabled",
	PreventDuplicateURL:           "URL",
	PreventDuplicateTypeAndURL:    "Type and URL",
	PreventDuplicateConfiguration: "Configuration",
}

var preventDuplicateNames = map[string]PreventDuplicateDownload{
	"none":          PreventDuplicateNone,
	"disabled":      PreventDuplicateNone,
	"url":           PreventDuplicateURL,
	"type_and_url":  PreventDuplicateTypeAndURL,
	"configuration": PreventDuplicateConfiguration,
}

// PreventDuplicateFromValue maps a stored integer to a policy, defaulting to none.
func PreventDuplicateFromValue(v int) PreventDuplicateDownload {
	p := PreventDuplicateDownload(v)
	if _, ok := preventDuplicateLabels[p]; !ok {
		return PreventDuplicateNone
	}
	return p
}

// ParsePreventDuplicate accepts either the integer value or the policy name.
func ParsePreventDuplicate(s string) PreventDuplicateDownload {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return PreventDuplicateFromValue(n)
	}
	if p, ok := preventDuplicateNames[s]; ok {
		return p
	}
	return PreventDuplicateNone
}

// Label returns the display label.
func (p PreventDuplicateDownload) Label() string {
	if l, ok := preventDuplicateLabels[p]; ok {
		return l
	}
	return preventDuplicateLabels[PreventDuplicateNone]
}

// SponsorBlockCategory is a segment category removable through SponsorBlock.
type SponsorBlockCategory string

const (
	SponsorBlockSponsor       SponsorBlockCategory = "sponsor"
	SponsorBlockIntro         SponsorBlockCategory = "intro"
	SponsorBlockOutro         SponsorBlockCategory = "outro"
	SponsorBlockInteraction   SponsorBlockCategory = "interaction"
	SponsorBlockSelfPromo     SponsorBlockCategory = "selfpromo"
	SponsorBlockMusicOffTopic SponsorBlockCategory = "music_offtopic"
	SponsorBlockPreview       SponsorBlockCategory = "preview"
	SponsorBlockFiller        SponsorBlockCategory = "filler"
)

// AllSponsorBlockCategories lists every category.
func AllSponsorBlockCategories() []SponsorBlockCategory {
	return []SponsorBlockCategory{
		SponsorBlockSponsor, SponsorBlockIntro, SponsorBlockOutro, SponsorBlockInteraction,
		SponsorBlockSelfPromo, SponsorBlockMusicOffTopic, SponsorBlockPreview, SponsorBlockFiller,
	}
}

// IsSponsorBlockCategory reports whether s names a known category.
func IsSponsorBlockCategory(s string) bool {
	for _, c := range AllSponsorBlockCategories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// ParseSponsorBlockCategory returns the category named s. ok is false for unknown names.
func ParseSponsorBlockCategory(s string) (c SponsorBlockCategory, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !IsSponsorBlockCategory(s) {
		return "", false
	}
	return SponsorBlockCategory(s), true
}
