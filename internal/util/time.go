package util

import (
	"time"
)

// The bot operates on Colombia time, a fixed UTC-5 offset with no DST. Local
// timestamps are computed once at ingestion from the record's UTC timestamp;
// they are never re-fetched or re-derived.
const botUTCOffsetHours = -5

var botLocation = time.FixedZone("UTC-5", botUTCOffsetHours*3600)

// BotLocation returns the fixed operating timezone of the bot.
func BotLocation() *time.Location {
	return botLocation
}

// BotNow returns the current time in the bot's timezone. Used as the safe
// fallback whenever a record carries an unparseable timestamp.
func BotNow() time.Time {
	return time.Now().In(botLocation)
}

// ParseRecordTime converts a cloud log timestamp (ISO-8601, UTC) to the
// bot's local time. Malformed timestamps never abort the batch; they fall
// back to BotNow.
func ParseRecordTime(timestamp string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return BotNow()
	}
	return t.In(botLocation)
}
