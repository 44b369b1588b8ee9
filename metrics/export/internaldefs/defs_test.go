package internaldefs

import (
	"strings"
	"testing"

	multiAuth "github.com/MrEthical07/multiAuth"
)

func TestCountersCoverEveryEngineCounter(t *testing.T) {
	seen := map[multiAuth.MetricID]string{}
	for _, def := range Counters {
		if prev, ok := seen[def.ID]; ok {
			t.Fatalf("metric id %d exported as both %s and %s", def.ID, prev, def.Name)
		}
		if !strings.HasPrefix(def.Name, "multiauth_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %s does not follow naming", def.Name)
		}
		seen[def.ID] = def.Name
	}
	for id := multiAuth.MetricID(0); id < multiAuth.MetricValidateLatency; id++ {
		if _, ok := seen[id]; !ok {
			t.Fatalf("engine counter %d has no exported name", id)
		}
	}
}

func TestCumulative(t *testing.T) {
	tests := []struct {
		name string
		raw  []uint64
		want [BucketCount]uint64
	}{
		{name: "empty", raw: nil, want: [BucketCount]uint64{}},
		{name: "short", raw: []uint64{1, 2, 3}, want: [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}},
		{name: "long", raw: []uint64{1, 1, 1, 1, 1, 1, 1, 1, 9}, want: [BucketCount]uint64{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cumulative(tt.raw); got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
	if Buckets[BucketCount-1].LE != "+Inf" {
		t.Fatal("last bucket must be unbounded")
	}
}
