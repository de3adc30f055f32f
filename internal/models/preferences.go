package models

import "zeku/internal/enums"

// AudioPreferences controls audio extraction and post-processing.
type AudioPreferences struct {
	Format          enums.AudioFormat   `json:"format"`
	Encoding        enums.AudioEncoding `json:"encoding"`
	Quality         enums.AudioQuality  `json:"quality"`
	EmbedThumb      bool                `json:"embed_thumb"`
	CropThumb       bool                `json:"crop_thumb"`
	SplitByChapters bool                `json:"split_by_chapters"`
	SponsorBlock    []string            `json:"sponsorblock"`
}

// DefaultAudioPreferences returns preferences with every option at its default.
func DefaultAudioPreferences() AudioPreferences {
	return AudioPreferences{
		Format:       enums.AudioFormatDefault,
		Encoding:     enums.AudioEncodingDefault,
		Quality:      enums.AudioQualityDefault,
		EmbedThumb:   true,
		SponsorBlock: []string{},
	}
}

// VideoPreferences controls stream selection, subtitles and chapters for video downloads.
type VideoPreferences struct {
	Format          enums.VideoFormat     `json:"format"`
	Encoding        enums.VideoEncoding   `json:"encoding"`
	Quality         enums.VideoQuality    `json:"quality"`
	EmbedSubs       bool                  `json:"embed_subs"`
	WriteSubs       bool                  `json:"write_subs"`
	WriteAutoSubs   bool                  `json:"write_auto_subs"`
	SubsLanguages   string                `json:"subs_languages"`
	SubsFormat      enums.SubtitlesFormat `json:"subs_format"`
	AddChapters     bool                  `json:"add_chapters"`
	SplitByChapters bool                  `json:"split_by_chapters"`
	RemoveAudio     bool                  `json:"remove_audio"`
	AudioFormatIDs  []string              `json:"audio_format_ids"`
	SponsorBlock    []string              `json:"sponsorblock"`
}

// DefaultVideoPreferences returns preferences with every option at its default.
func DefaultVideoPreferences() VideoPreferences {
	return VideoPreferences{
		Format:         enums.VideoFormatDefault,
		Encoding:       enums.VideoEncodingNoRecode,
		Quality:        enums.VideoQualityDefault,
		SubsLanguages:  "en.*",
		SubsFormat:     enums.SubtitlesFormatDefault,
		AudioFormatIDs: []string{},
		SponsorBlock:   []string{},
	}
}
