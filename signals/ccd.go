package signals

// Labels of the lines wired on the CCD controller
const (
	P1     = "P1"
	P2     = "P2"
	P3     = "P3"
	TG     = "TG"
	S1     = "S1"
	S2     = "S2"
	S3     = "S3"
	SW     = "SW"
	RG     = "RG"
	DG     = "DG"
	IR     = "IR"
	IP     = "IP"
	IM     = "IM"
	CLAMP  = "CLAMP"
	CONV   = "CONV"
	STROBE = "STROBE"
	SYNC   = "SYNC"
)

var ccdLines = []Signal{
	{Bit: 31, Label: P1, Description: "parallel clock phase 1", Group: "parallel", Order: 1},
	{Bit: 30, Label: P2, Description: "parallel clock phase 2", Group: "parallel", Order: 2},
	{Bit: 29, Label: P3, Description: "parallel clock phase 3", Group: "parallel", Order: 3},
	{Bit: 28, Label: TG, Description: "transfer gate", Group: "parallel", Order: 4},
	{Bit: 27, Label: S1, Description: "serial clock phase 1", Group: "serial", Order: 1},
	{Bit: 26, Label: S2, Description: "serial clock phase 2", Group: "serial", Order: 2},
	{Bit: 25, Label: S3, Description: "serial clock phase 3", Group: "serial", Order: 3},
	{Bit: 24, Label: SW, Description: "summing well", Group: "serial", Order: 4},
	{Bit: 23, Label: RG, Description: "output reset gate", Group: "serial", Order: 5},
	{Bit: 22, Label: DG, Description: "dump gate", Group: "parallel", Order: 5},
	{Bit: 21, Label: IR, Description: "integrator reset", Group: "video", Order: 1},
	{Bit: 20, Label: IP, Description: "integrate signal (+)", Group: "video", Order: 3},
	{Bit: 19, Label: IM, Description: "integrate pedestal (-)", Group: "video", Order: 2},
	{Bit: 18, Label: CLAMP, Description: "video clamp", Group: "video", Order: 4},
	{Bit: 17, Label: CONV, Description: "ADC convert", Group: "adc", Order: 1},
	{Bit: 16, Label: STROBE, Description: "ADC data strobe", Group: "adc", Order: 2},
	{Bit: 15, Label: SYNC, Description: "scope trigger / frame sync", Order: 0},
}

var ccd = MustRegistry(ccdLines...)

// CCD returns the registry of the 17 lines wired on the CCD controller,
// bits 31 down to 15.  The registry is shared; it is never mutated.
func CCD() *Registry {
	return ccd
}
