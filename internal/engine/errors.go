// SPDX-License-Identifier: GPL-3.0

package engine

import "errors"

// ErrTimeInPast is returned by Schedule/ScheduleAt when the requested time
// is strictly before the scheduler's current clock (spec 4.1).
var ErrTimeInPast = errors.New("engine: scheduled time is in the past")

// ErrUnknownComponent is returned when an Activate is attempted against a
// ComponentID that was never registered.
var ErrUnknownComponent = errors.New("engine: unknown component")
