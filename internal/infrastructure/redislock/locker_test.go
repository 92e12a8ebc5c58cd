package redislock

import "testing"

func TestNewSweepLockerKey(t *testing.T) {
	if l := NewSweepLocker(nil, "", nil); l.key != DefaultKey {
		t.Errorf("key = %q, want %q", l.key, DefaultKey)
	}
	if l := NewSweepLocker(nil, "custom:lock", nil); l.key != "custom:lock" {
		t.Errorf("key = %q, want custom:lock", l.key)
	}
}
