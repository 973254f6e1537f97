//go:build rp2040

package main

import (
	"camlink/core"
	"camlink/sensor"
	"camlink/targets/pio"
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"time"
)

// Board wiring
const (
	modemTX = machine.GPIO8 // UART1 TX -> ESP-01 RX
	modemRX = machine.GPIO9 // UART1 RX <- ESP-01 TX

	sensorSDA = machine.GPIO4
	sensorSCL = machine.GPIO5

	vsyncPin = core.GPIOPin(10)
	hrefPin  = core.GPIOPin(11)
)

var errIdleIRQ = errors.New("pio: idle detector not on PIO0")

var (
	transport *core.Shared[core.Transport]
	handler   *core.Handler

	frameSync = &core.FrameSync{VSync: vsyncPin, HRef: hrefPin}
)

func main() {
	// Initialize USB CDC immediately
	InitUSB()
	core.SetDebugWriter(usbDebugWriter)
	core.InitAsyncDebug()
	core.TimerInit()
	UpdateSystemTime()

	cfg := core.DefaultConfig()

	bringUpSensor()

	gpioDriver := NewRPGPIODriver()
	if err := frameSync.Attach(gpioDriver); err != nil {
		core.DebugPrintln("framesync: " + err.Error())
	}

	port, err := newModemUART(cfg.BaudRate)
	if err != nil {
		fatal("modem uart: " + err.Error())
	}
	transport = core.NewShared(core.NewTransport(port))

	if GetMode().Bridge {
		runBridge()
		return
	}

	replies, consumer := core.NewResponseChannel[core.Reply](cfg.ChannelDepth)
	handler = core.NewHandler(transport, replies)
	handler.SetPolicy(cfg.Policy)
	enableInterrupts()

	app := core.NewApp(transport, consumer, cfg)
	for {
		UpdateSystemTime()
		app.Step(core.GetTime())

		if core.IsShutdown() {
			core.DumpTraceRing()
			halt()
		}
		time.Sleep(cfg.PollPeriod)
	}
}

// bringUpSensor verifies and initializes the image sensor. The modem loop
// runs regardless of the outcome.
func bringUpSensor() {
	bus, err := NewRPI2CBus(machine.I2C0, sensorSDA, sensorSCL, sensorBusFrequency)
	if err != nil {
		core.DebugPrintln("sensor: i2c: " + err.Error())
		return
	}
	cam := sensor.New(bus)
	if err := cam.Verify(); err != nil {
		core.DebugPrintln("sensor: " + err.Error())
		return
	}
	if err := cam.Init(); err != nil {
		core.DebugPrintln("sensor: " + err.Error())
		return
	}
	core.DebugPrintln("sensor: OV2640 ready")
}

func newModemUART(baud uint32) (*ModemUART, error) {
	idle, err := pio.NewIdleDetector()
	if err != nil {
		return nil, err
	}
	if idle.IRQ() != rp.IRQ_PIO0_IRQ_0 {
		return nil, errIdleIRQ
	}
	u := &ModemUART{Bus: rp.UART1, Idle: idle}
	if err := u.Configure(baud, modemTX, modemRX); err != nil {
		return nil, err
	}
	return u, nil
}

// enableInterrupts starts reception: both the UART and the idle detector
// interrupt vector into the same handler at the same priority.
func enableInterrupts() {
	transport.Lock(func(t *core.Transport) {
		t.Resume()
	})

	uartIRQ := interrupt.New(rp.IRQ_UART1_IRQ, func(interrupt.Interrupt) {
		handler.Service()
	})
	uartIRQ.SetPriority(0x80)
	uartIRQ.Enable()

	idleIRQ := interrupt.New(rp.IRQ_PIO0_IRQ_0, func(interrupt.Interrupt) {
		handler.Service()
	})
	idleIRQ.SetPriority(0x80)
	idleIRQ.Enable()
}

// runBridge echoes every byte received from the modem back to it.
func runBridge() {
	rxProd, rxCons := core.NewResponseChannel[byte](64)
	txProd, txCons := core.NewResponseChannel[byte](64)
	handler = core.NewRawHandler(transport, rxProd, txCons)
	enableInterrupts()

	bridge := core.NewBridge(transport, rxCons, txProd)
	for {
		UpdateSystemTime()
		bridge.Step()
		if core.IsShutdown() {
			core.DumpTraceRing()
			halt()
		}
		time.Sleep(time.Millisecond)
	}
}

// halt parks the firmware after a fatal fault, blinking the LED.
func halt() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}

func fatal(msg string) {
	core.TryShutdown(msg)
	core.DebugPrintln(msg)
	halt()
}
