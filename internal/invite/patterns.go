package invite

import (
	"regexp"
)

var (
	tagRE      = regexp.MustCompile(`<[^>]+>`)
	durationRE = regexp.MustCompile(`(?i)\b(\d+)\s*(min|mins|minutes|hour|hours|hr|hrs)\b`)
	emailRE    = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	yearRE     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	// Weekday Month Day, Year h:mm am [- h:mm pm]
	subjectRE = regexp.MustCompile(`(?i)\b(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+` +
		`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})` +
		`(?:\s*,|\s+at)?\s+(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?` +
		`(?:\s*[-–—]\s*(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?m\.?)?)?`)

	dateOnlyRE = regexp.MustCompile(`(?i)@\s*(?:mon|tue|wed|thu|fri|sat|sun)\s+` +
		`(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+(\d{1,2}),\s*(\d{4})`)

	microdataRE = regexp.MustCompile(`itemprop="startDate"\s+datetime="(\d{8})"`)

	// Fragments worth handing to a PhraseResolver: they name a day and a
	// clock time, or are an ISO-like date and time.
	phraseCandidateRE = regexp.MustCompile(`(?i)` +
		`\b\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}\b` +
		`|\b(?:today|tomorrow|next\s+\w+|this\s+\w+|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b[^\n.]{0,30}?\b\d{1,2}(?::\d{2}\s*(?:[ap]\.?m\.?)?|\s*[ap]\.?m\.?)` +
		`|\b[a-z]{3,9}\.?\s+\d{1,2}(?:st|nd|rd|th)?\b[^\n]{0,40}?\b\d{1,2}(?::\d{2}\s*(?:[ap]\.?m\.?)?|\s*[ap]\.?m\.?)`)

	isoDateTimeRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}$`)
	clockRE       = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b|\b(\d{1,2}):(\d{2})\b`)

	datePhraseRE = regexp.MustCompile(`(?i)(tomorrow|next\s+\w+|monday|tuesday|wednesday|thursday|friday|saturday|sunday|afternoon|morning|evening)[^.\n]{0,50}`)
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

type zoneHint struct {
	re   *regexp.Regexp
	zone string
}

// zoneHints are checked in order; the first match wins.
var zoneHints = []zoneHint{
	{re: regexp.MustCompile(`(?i)\bIST\b`), zone: "Asia/Kolkata"},
	{re: regexp.MustCompile(`(?i)\bPST\b|\bPT\b`), zone: "America/Los_Angeles"},
	{re: regexp.MustCompile(`(?i)\bCET\b`), zone: "Europe/Paris"},
	{re: regexp.MustCompile(`(?i)\bBST\b|\bUK time\b`), zone: "Europe/London"},
}
