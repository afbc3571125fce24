package ivolunteer

import (
	"hauntops-backend/lib/restyutil"
	"hauntops-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

var tracer = telemetry.Tracer("hauntops.lib.scrapers.ivolunteer")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}

func instrumentClient(client *resty.Client) {
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
}
