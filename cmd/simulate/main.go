package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/simulation"
)

func main() {
	envFile := flag.String("env", ".env", "path to the .env file")
	frames := flag.Int("frames", 3600, "number of frames to simulate")
	inputRate := flag.Float64("input-rate", 0.2, "probability of a random input per frame")
	printEvery := flag.Int("print-every", 0, "print the board every N frames (0: final board only)")
	realtime := flag.Bool("realtime", false, "run through the session manager in real time")
	quiet := flag.Bool("quiet", false, "suppress per-frame output")
	flag.Parse()

	appConfig := config.LoadConfig(*envFile)
	if err := appConfig.Game.Validate(); err != nil {
		log.Fatalf("[Main] Invalid game config: %v", err)
	}

	seed := appConfig.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Printf("[Main] Starting simulation (seed %d, randomizer %s)", seed, appConfig.Game.Randomizer)

	cfg := simulation.DefaultConfig()
	cfg.Frames = *frames
	cfg.FrameInterval = appConfig.FrameInterval
	cfg.InputRate = *inputRate
	cfg.PrintEvery = *printEvery
	cfg.Verbose = !*quiet
	cfg.Game = appConfig.Game

	run := simulation.Run
	if *realtime {
		run = simulation.RunSession
	}
	if _, err := run(os.Stdout, rng, cfg); err != nil {
		log.Fatalf("[Main] Simulation failed: %v", err)
	}
}
