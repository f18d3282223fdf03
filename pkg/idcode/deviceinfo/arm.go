package deviceinfo

// ARM designed debug ports.
func init() {
	register(0x0BB11477, DeviceInfo{
		Name:        "SW-DP v1 (MINDP)",
		Description: "Cortex-M0 class",
		Examples:    "nRF51, LPC11xx, STM32F0",
	})
	register(0x0BC11477, DeviceInfo{
		Name:        "SW-DP v1 (MINDP)",
		Description: "Cortex-M0+ class",
		Examples:    "SAMD21, STM32L0, STM32G0",
	})
	register(0x0BC12477, DeviceInfo{
		Name:        "SW-DP v2 (MINDP)",
		Description: "Cortex-M0+ class, multidrop",
		Examples:    "RP2040",
	})
	register(0x1BA01477, DeviceInfo{
		Name:        "SW-DP v1",
		Description: "Cortex-M3/M4 class",
		Examples:    "STM32F1, LPC17xx",
	})
	register(0x2BA01477, DeviceInfo{
		Name:        "SW-DP v1",
		Description: "Cortex-M3/M4 class",
		Examples:    "STM32F4, nRF52",
	})
	register(0x6BA02477, DeviceInfo{
		Name:        "SW-DP v2",
		Description: "Cortex-M33 class",
		Examples:    "STM32L5, nRF9160",
	})
}
