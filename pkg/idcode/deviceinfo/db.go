package deviceinfo

import "github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"

// db is keyed by the full DPIDR word.
var db = make(map[uint32]DeviceInfo)

func register(raw uint32, info DeviceInfo) {
	db[raw] = info
}

// Lookup returns what is known about a DPIDR. Unknown words still get the
// decoded fields and architecture bits.
func Lookup(raw uint32) DeviceInfo {
	id := idcode.Parse(raw)
	info, ok := db[raw]
	if !ok {
		info = DeviceInfo{
			Name:        "Unknown debug port",
			Description: "No entry in device database",
		}
	}
	info.IDCode = id
	info.Manufacturer = id.Manufacturer()
	info.DPVersion = int((raw >> 12) & 0xF)
	info.MinDP = raw&(1<<16) != 0
	info.Multidrop = info.DPVersion >= 2
	return info
}
