package radio

// LinkSample is the canonical link-quality measurement, regardless of
// which wire format delivered it. All fields are raw modem units; RSSI
// values are the modem's 0-255 scale, not dBm.
type LinkSample struct {
	RSSI            uint8
	RemoteRSSI      uint8
	TxBufferPercent uint8
	Noise           uint8
	RemoteNoise     uint8
	RxErrors        uint16
	FixedErrors     uint16
}

// SampleFromStatus maps the preferred RADIO_STATUS frame to the
// canonical sample.
func SampleFromStatus(f RadioStatusFrame) LinkSample {
	return LinkSample{
		RSSI:            f.RSSI,
		RemoteRSSI:      f.RemoteRSSI,
		TxBufferPercent: f.TxBuf,
		Noise:           f.Noise,
		RemoteNoise:     f.RemoteNoise,
		RxErrors:        f.RxErrors,
		FixedErrors:     f.Fixed,
	}
}

// SampleFromLegacy maps the legacy RADIO frame to the canonical sample.
func SampleFromLegacy(f RadioFrame) LinkSample {
	return LinkSample{
		RSSI:            f.RSSI,
		RemoteRSSI:      f.RemoteRSSI,
		TxBufferPercent: f.TxBuf,
		Noise:           f.Noise,
		RemoteNoise:     f.RemoteNoise,
		RxErrors:        f.RxErrors,
		FixedErrors:     f.Fixed,
	}
}
