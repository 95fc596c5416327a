package service

import (
	"time"

	"github.com/avetrov/go-idm-core/models"
)

// defaultResetDailyLimit caps password-reset requests per UTC calendar day
// when no explicit limit is configured.
const defaultResetDailyLimit = 5

// updateResetRequestLimit advances the account's password-reset state for a
// new request arriving at now. It is a pure function: the caller persists the
// returned account, and a denial leaves the stored state untouched.
//
// The window is the UTC calendar day, not a rolling 24 hours. A request on
// the same day as reset_timestamp increments the counter and is denied once
// the incremented count exceeds dailyLimit; the first request of a new day
// resets the counter to one and re-anchors the timestamp. Every granted
// request gets a fresh reset key and key timestamp.
func updateResetRequestLimit(account models.Account, now time.Time, dailyLimit int, newKey func() string) (models.Account, error) {
	if dailyLimit <= 0 {
		dailyLimit = defaultResetDailyLimit
	}

	if daysBetweenUTC(account.ResetTimestamp, now) == 0 {
		account.ResetCount++
		if account.ResetCount > dailyLimit {
			return models.Account{}, ErrResetLimitExceeded
		}
	} else {
		account.ResetTimestamp = now
		account.ResetCount = 1
	}

	account.ResetKey = newKey()
	account.ResetKeyTimestamp = now

	return account, nil
}

// daysBetweenUTC returns the whole-day difference between the UTC calendar
// dates of from and to. Two instants on the same UTC date yield zero however
// far apart their clock times are; 23:59 and 00:01 across midnight yield one.
func daysBetweenUTC(from, to time.Time) int {
	fromUTC, toUTC := from.UTC(), to.UTC()
	fromDay := time.Date(fromUTC.Year(), fromUTC.Month(), fromUTC.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(toUTC.Year(), toUTC.Month(), toUTC.Day(), 0, 0, 0, 0, time.UTC)

	return int(toDay.Sub(fromDay).Hours() / 24)
}
