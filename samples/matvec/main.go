package main

import (
	"flag"
	"fmt"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/npusim/api"
	"github.com/sarchlab/npusim/config"
	"github.com/sarchlab/npusim/npu"
	valgen "github.com/sarchlab/npusim/util"
)

var useMonitor = flag.Bool("monitor", false,
	"start the monitoring server")

func matVec(driver api.Driver, device *config.Comp) {
	n := device.Config().ArraySize
	gen := valgen.MakeIncreasingGen(0)

	// Weight matrix at 0x000, one activation vector at 0x100.
	for i := 0; i < n*n; i++ {
		driver.Memory().Write(api.WeightBase+i, gen())
	}
	driver.Memory().WriteBlock(api.ActBufA, []int8{1, -1, 2, -2})

	driver.Submit(api.Program{
		api.LoadWeights{Addr: api.WeightBase},
		api.MatMul{
			Src:  api.ActBufA,
			Dst:  api.ActBufB,
			Rows: 1,
			Requant: npu.RequantParams{
				Shift: 1,
			},
		},
		api.Halt{},
	})

	if err := driver.Run(); err != nil {
		panic(err)
	}

	fmt.Println(device.ArrayStateTable())
	fmt.Println("result:", driver.Memory().ReadBlock(api.ActBufB, n))
}

func main() {
	flag.Parse()

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

	if *useMonitor {
		monitor := monitoring.NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(device)
		monitor.StartServer()
	}

	driver.RegisterDevice(device)

	matVec(driver, device)

	atexit.Exit(0)
}
