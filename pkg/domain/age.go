package domain

import "time"

// AdultAge is the minimum age accepted for a customer.
const AdultAge = 18

// AgeAt returns the age in whole years of someone born on birthDate at the
// reference time: the year difference, minus one when the reference month/day
// falls before the birth month/day. Both are read as calendar dates.
func AgeAt(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// IsAtLeast reports whether the person is at least years old at now.
func IsAtLeast(birthDate, now time.Time, years int) bool {
	return AgeAt(birthDate, now) >= years
}
