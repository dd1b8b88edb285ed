package motor

import (
	"testing"

	"go.viam.com/test"
)

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		conf Config
		err  string
	}{
		{"forward", Config{Port: 5, Gearset: GearsetBlue}, ""},
		{"reversed", Config{Port: -6}, ""},
		{"missing port", Config{}, `"port" is required`},
		{"port too high", Config{Port: 22}, "port must be between 1 and 21"},
		{"reversed too high", Config{Port: -30}, "port must be between 1 and 21"},
		{"bad gearset", Config{Port: 1, Gearset: "purple"}, `unknown gearset "purple"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.conf.Validate("path")
			if tc.err == "" {
				test.That(t, err, test.ShouldBeNil)
				return
			}
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.err)
		})
	}
}

func TestPolarity(t *testing.T) {
	conf := Config{Port: -6}
	test.That(t, conf.Reversed(), test.ShouldBeTrue)
	test.That(t, conf.AbsPort(), test.ShouldEqual, 6)

	conf = Config{Port: 1}
	test.That(t, conf.Reversed(), test.ShouldBeFalse)
	test.That(t, conf.AbsPort(), test.ShouldEqual, 1)
}

func TestGearsetRPM(t *testing.T) {
	for gearset, expected := range map[Gearset]float64{
		GearsetRed:   100,
		GearsetGreen: 200,
		"":           200,
		GearsetBlue:  600,
	} {
		rpm, err := gearset.RPM()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rpm, test.ShouldEqual, expected)
	}
}

func TestClampEffort(t *testing.T) {
	test.That(t, ClampEffort(0), test.ShouldEqual, 0)
	test.That(t, ClampEffort(127), test.ShouldEqual, 127)
	test.That(t, ClampEffort(128), test.ShouldEqual, 127)
	test.That(t, ClampEffort(-500), test.ShouldEqual, -127)

	test.That(t, EffortFromFloat(95.25), test.ShouldEqual, 95)
	test.That(t, EffortFromFloat(-95.5), test.ShouldEqual, -96)
	test.That(t, EffortFromFloat(300), test.ShouldEqual, 127)

	test.That(t, PowerPct(-127), test.ShouldEqual, 1.0)
	test.That(t, PowerPct(0), test.ShouldEqual, 0.0)
}
