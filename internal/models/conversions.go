package models

import (
	"encoding/json"

	"zeku/internal/domain/logger"
)

// Column codecs. Decoding never fails: malformed payloads yield the documented
// fallback and are logged.

// EncodeFormat serializes a single format.
func EncodeFormat(f Format) string {
	return encodeJSON(f, "{}")
}

// DecodeFormat parses a format, falling back to an empty Format.
func DecodeFormat(s string) Format {
	var f Format
	if !decodeJSON(s, &f, "format") {
		return Format{}
	}
	return f
}

// EncodeFormats serializes a format list.
func EncodeFormats(fs []Format) string {
	if fs == nil {
		fs = []Format{}
	}
	return encodeJSON(fs, "[]")
}

// DecodeFormats parses a format list, falling back to an empty list.
func DecodeFormats(s string) []Format {
	var fs []Format
	if !decodeJSON(s, &fs, "format list") || fs == nil {
		return []Format{}
	}
	return fs
}

// EncodeStrings serializes a string list.
func EncodeStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	return encodeJSON(ss, "[]")
}

// DecodeStrings parses a string list, falling back to an empty list.
func DecodeStrings(s string) []string {
	var ss []string
	if !decodeJSON(s, &ss, "string list") || ss == nil {
		return []string{}
	}
	return ss
}

// EncodeAudioPreferences serializes audio preferences.
func EncodeAudioPreferences(p AudioPreferences) string {
	if p.SponsorBlock == nil {
		p.SponsorBlock = []string{}
	}
	return encodeJSON(p, "{}")
}

// DecodeAudioPreferences parses audio preferences, falling back to the defaults.
func DecodeAudioPreferences(s string) AudioPreferences {
	p := DefaultAudioPreferences()
	if !decodeJSON(s, &p, "audio preferences") {
		return DefaultAudioPreferences()
	}
	if p.SponsorBlock == nil {
		p.SponsorBlock = []string{}
	}
	return p
}

// EncodeVideoPreferences serializes video preferences.
func EncodeVideoPreferences(p VideoPreferences) string {
	if p.SponsorBlock == nil {
		p.SponsorBlock = []string{}
	}
	if p.AudioFormatIDs == nil {
		p.AudioFormatIDs = []string{}
	}
	return encodeJSON(p, "{}")
}

// DecodeVideoPreferences parses video preferences, falling back to the defaults.
func DecodeVideoPreferences(s string) VideoPreferences {
	p := DefaultVideoPreferences()
	if !decodeJSON(s, &p, "video preferences") {
		return DefaultVideoPreferences()
	}
	if p.SponsorBlock == nil {
		p.SponsorBlock = []string{}
	}
	if p.AudioFormatIDs == nil {
		p.AudioFormatIDs = []string{}
	}
	return p
}

func encodeJSON(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Pl.E("Failed to encode %T: %v", v, err)
		return fallback
	}
	return string(b)
}

func decodeJSON(s string, dst any, what string) bool {
	if s == "" {
		return false
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		logger.Pl.W("Could not decode %s %q, using fallback: %v", what, s, err)
		return false
	}
	return true
}
