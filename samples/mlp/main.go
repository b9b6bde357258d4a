package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/npusim/api"
	"github.com/sarchlab/npusim/config"

	_ "embed"
)

//go:embed model.yaml
var modelText string

// One 4-element activation row per device run.
var inputRows = [][]int8{
	{10, -20, 30, -40},
	{1, 2, 3, 4},
	{-5, -5, 5, 5},
}

func main() {
	engine := sim.NewSerialEngine()

	driver := api.NewDriverBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	device, err := config.NewNPUBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("NPU")
	if err != nil {
		panic(err)
	}
	driver.RegisterDevice(device)

	model := &api.Model{}
	if err := yaml.Unmarshal([]byte(modelText), model); err != nil {
		panic(err)
	}

	cfg := device.Config()
	model.WriteWeights(driver.Memory(), cfg)
	for r, row := range inputRows {
		driver.Memory().WriteBlock(api.ActBufA+r*cfg.ArraySize, row)
	}

	prog, err := model.Compile(cfg, len(inputRows))
	if err != nil {
		panic(err)
	}
	driver.Submit(prog)

	if err := driver.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	for r := range inputRows {
		out := driver.Memory().ReadBlock(
			model.OutputAddr()+r*cfg.ArraySize, cfg.ArraySize)
		fmt.Printf("row %d: %v\n", r, out)
	}

	atexit.Exit(0)
}
