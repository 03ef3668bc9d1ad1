// Package main is the entry point of the CanDash bridge.
// It loads the configuration, constructs the session (state, bus, handler,
// monitor), starts the bridge loops and drives the kinematic model from a
// tick loop while reading driver commands from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"CanDash/internal/core"
	"CanDash/internal/util"
	"CanDash/internal/vehicle"
)

func main() {
	cfgPath := flag.String("c", "configs/config.yml", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging and frame tracing")
	flag.Parse()

	log := util.SetupLogger(*debug)
	log.Info("starting candash", "config", *cfgPath)

	sess := core.NewSession(*cfgPath, log)
	if *debug {
		sess.State.SetDebugMode(true)
	}
	sess.StartAll()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Driver commands arrive on stdin, one per line.
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	ticker := time.NewTicker(time.Duration(sess.Cfg.TickIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			log.Info("shutting down")
			sess.StopAll()
			return
		case <-ticker.C:
			sess.Handler.UpdateSpeed()
		case line, open := <-lines:
			if !open {
				lines = nil
				continue
			}
			if quit := runCommand(sess, line); quit {
				log.Info("shutting down")
				sess.StopAll()
				return
			}
		}
	}
}

// runCommand parses and executes one driver command line. Unknown input
// prints usage; the returned flag requests shutdown.
func runCommand(sess *core.Session, line string) bool {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return false
	}
	h := sess.Handler
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "ignition":
		h.SetIgnition(onOff(args))
	case "engine":
		h.SetEngine(len(args) > 0 && (args[0] == "start" || args[0] == "on"))
	case "gear":
		if len(args) == 0 {
			fmt.Println("usage: gear p|n|r|d")
			return false
		}
		h.SetGearPosition(gearFromLetter(args[0]))
	case "accel":
		if len(args) == 0 {
			fmt.Println("usage: accel -1|0|1")
			return false
		}
		a, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("usage: accel -1|0|1")
			return false
		}
		h.SetAcceleration(a)
	case "brake":
		h.SetBrake(onOff(args))
	case "signal":
		h.SetSignal(signalFromWord(args))
	case "door":
		if len(args) == 0 {
			fmt.Println("usage: door 1|2|3|4")
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > 4 {
			fmt.Println("usage: door 1|2|3|4")
			return false
		}
		h.ToggleDoor(1 << (n - 1))
	case "speed":
		if len(args) == 0 {
			fmt.Println("usage: speed <kph>")
			return false
		}
		target, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Println("usage: speed <kph>")
			return false
		}
		h.SetSpeed(target)
	case "debug":
		sess.State.SetDebugMode(onOff(args))
	case "state":
		printState(sess)
	case "trace":
		for _, entry := range sess.State.Trace() {
			fmt.Println(entry)
		}
	case "quit", "exit":
		return true
	default:
		fmt.Println("commands: ignition, engine, gear, accel, brake, signal, door, speed, debug, state, trace, quit")
	}
	return false
}

func onOff(args []string) bool {
	return len(args) > 0 && args[0] == "on"
}

func gearFromLetter(s string) int {
	switch s {
	case "p":
		return vehicle.GearPark
	case "n":
		return vehicle.GearNeutral
	case "r":
		return vehicle.GearReverse
	case "d":
		return vehicle.GearDrive
	default:
		return -1 // rejected and logged by the handler
	}
}

func signalFromWord(args []string) byte {
	if len(args) == 0 {
		return 0
	}
	switch args[0] {
	case "left":
		return 0x01
	case "right":
		return 0x02
	case "hazard":
		return 0x03
	default:
		return 0
	}
}

func printState(sess *core.Session) {
	s := sess.State.Snapshot()
	fmt.Printf("ignition=%v engine=%v gear=%s speed=%.1fkph rpm=%.0f accel=%d brake=%v doors=%04b signal=%02b debug=%v\n",
		s.IgnitionOn, s.EngineRunning, s.Gear, s.Speed, s.RPM,
		s.Acceleration, s.BrakeActive, s.DoorState, s.SignalState, s.DebugMode)
}
