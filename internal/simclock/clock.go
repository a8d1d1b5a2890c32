// SPDX-License-Identifier: GPL-3.0

// Package simclock defines the virtual time and unit types shared by every
// component of the simulation: Clock (simulation time and durations), Bytes
// and Bitrate (traffic accounting), and Power (linear/logarithmic RF power).
package simclock

import (
	"fmt"
	"math"
	"time"
)

// Clock represents virtual simulation time, in the same units as
// time.Duration (nanoseconds), but kept distinct so a Clock is never
// accidentally compared against a wall-clock time.Duration.
type Clock time.Duration

// ClockInfinity is the maximum representable Clock value.
const ClockInfinity = Clock(math.MaxInt64)

// ClockZero is the zero value of a Clock, spelled out for readability at
// call sites that branch on "unset".
const ClockZero = Clock(0)

// Seconds returns the Clock value in fractional seconds.
func (c Clock) Seconds() float64 {
	return time.Duration(c).Seconds()
}

// Duration returns the Clock value as a time.Duration.
func (c Clock) Duration() time.Duration {
	return time.Duration(c)
}

// MultiplyScaled multiplies with the given Clock value, scaled to
// time.Second, so that e.g. (3*time.Second).MultiplyScaled(2*time.Second) ==
// 6 seconds rather than an enormous nanosecond^2 product.
func (c Clock) MultiplyScaled(c2 Clock) Clock {
	// Split c into whole seconds and a sub-second remainder so the
	// intermediate product stays within int64 for multi-second operands.
	sec := Clock(time.Second)
	return c/sec*c2 + Clock(float64(c%sec)*float64(c2)/float64(sec))
}

// StringMS formats the Clock in milliseconds.
func (c Clock) StringMS() string {
	return fmt.Sprintf("%f", c.Seconds()*1000)
}

// String formats the Clock in seconds.
func (c Clock) String() string {
	return fmt.Sprintf("%f", c.Seconds())
}
