package robot

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/teleop/components/base"
	fakebase "go.viam.com/teleop/components/base/fake"
	"go.viam.com/teleop/components/input"
	fakeinput "go.viam.com/teleop/components/input/fake"
	"go.viam.com/teleop/components/motor"
	fakemotor "go.viam.com/teleop/components/motor/fake"
	"go.viam.com/teleop/display"
	"go.viam.com/teleop/logging"
)

type testRobot struct {
	*Robot
	chassis    *fakebase.Base
	intake     *fakemotor.Motor
	hopper     *fakemotor.Motor
	controller *fakeinput.Controller
	screen     *display.MemoryScreen
	clk        *clock.Mock
}

func newTestRobot(t *testing.T) testRobot {
	t.Helper()
	logger := logging.NewTestLogger(t)
	tr := testRobot{
		chassis:    fakebase.NewBase(),
		intake:     fakemotor.NewMotor("intake", motor.Config{Port: -6}, logger),
		hopper:     fakemotor.NewMotor("hopper", motor.Config{Port: 1}, logger),
		controller: fakeinput.NewController(),
		screen:     display.NewMemoryScreen(),
		clk:        clock.NewMock(),
	}
	var err error
	tr.Robot, err = New(Parts{
		Chassis:    tr.chassis,
		Intake:     tr.intake,
		Hopper:     tr.hopper,
		Controller: tr.controller,
		Screen:     tr.screen,
		Clock:      tr.clk,
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	return tr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNew(t *testing.T) {
	_, err := New(Parts{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(Parts{Chassis: fakebase.NewBase()}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	tr := newTestRobot(t)
	tr.chassis.SetPose(base.Pose{Position: r3.Vector{X: 4}, Theta: 30})

	test.That(t, tr.Initialize(ctx), test.ShouldBeNil)
	test.That(t, tr.chassis.Calibrated(), test.ShouldBeTrue)
	waitFor(t, func() bool { return tr.screen.Writes() >= 3 })
	// Calibration zeroes the pose before the first refresh.
	test.That(t, tr.screen.Line(0), test.ShouldEqual, "X: 0.000000")
	test.That(t, tr.screen.Line(2), test.ShouldEqual, "Theta: 0.000000")

	tr.chassis.SetPose(base.Pose{Position: r3.Vector{Y: 2.5}})
	tr.clk.Add(display.DefaultPeriod)
	waitFor(t, func() bool { return tr.screen.Line(1) == "Y: 2.500000" })

	// Initialize only runs once.
	test.That(t, tr.Initialize(ctx), test.ShouldBeNil)

	test.That(t, tr.Close(ctx), test.ShouldBeNil)
	writes := tr.screen.Writes()
	tr.clk.Add(time.Second)
	test.That(t, tr.screen.Writes(), test.ShouldEqual, writes)
}

func TestIdleEntryPoints(t *testing.T) {
	ctx := context.Background()
	tr := newTestRobot(t)
	test.That(t, tr.Disabled(ctx), test.ShouldBeNil)
	test.That(t, tr.CompetitionInitialize(ctx), test.ShouldBeNil)
	test.That(t, tr.Autonomous(ctx), test.ShouldBeNil)
	test.That(t, tr.chassis.Calls(), test.ShouldBeEmpty)
	test.That(t, tr.intake.Commands(), test.ShouldEqual, 0)
}

func TestOpControl(t *testing.T) {
	tr := newTestRobot(t)
	tr.controller.SetAxis(input.AnalogLeftY, -127)
	tr.controller.SetButton(input.ButtonR1, true)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var opErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		opErr = tr.OpControl(ctx)
	}()

	waitFor(t, func() bool { return tr.mapper.Ticks() >= 1 })
	effort, err := tr.intake.Effort(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, effort, test.ShouldEqual, 127)

	cancel()
	wg.Wait()
	test.That(t, opErr, test.ShouldBeNil)
	test.That(t, tr.chassis.StopCount(), test.ShouldEqual, 1)
	effort, err = tr.intake.Effort(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, effort, test.ShouldEqual, 0)
	effort, err = tr.hopper.Effort(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, effort, test.ShouldEqual, 0)
}

func TestEntryPoints(t *testing.T) {
	typ := reflect.TypeOf(&Robot{})
	var methods []string
	for i := 0; i < typ.NumMethod(); i++ {
		methods = append(methods, typ.Method(i).Name)
	}
	sort.Strings(methods)
	test.That(t, methods, test.ShouldResemble, []string{
		"Autonomous",
		"Close",
		"CompetitionInitialize",
		"Disabled",
		"Initialize",
		"OpControl",
		"Reconfigure",
	})
}
