package robot

import (
	"context"
	"time"
)

// DefaultWaitInterval is how often the wait helpers poll a readiness predicate.
const DefaultWaitInterval = 2 * time.Millisecond

// WaitRadar blocks until the radar is ready or ctx is done.
func WaitRadar(ctx context.Context, r Radar, every time.Duration) error {
	return waitFor(ctx, r.RadarReady, every)
}

// WaitMotor blocks until the motor is ready or ctx is done.
func WaitMotor(ctx context.Context, m Motor, every time.Duration) error {
	return waitFor(ctx, m.MotorReady, every)
}

// WaitArm blocks until the arm is ready or ctx is done.
func WaitArm(ctx context.Context, a Arm, every time.Duration) error {
	return waitFor(ctx, a.ArmReady, every)
}

func waitFor(ctx context.Context, ready func() bool, every time.Duration) error {
	if ready() {
		return nil
	}
	if every <= 0 {
		every = DefaultWaitInterval
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ready() {
				return nil
			}
		}
	}
}
