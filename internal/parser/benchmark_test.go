package parser

import (
	"fmt"
	"testing"
)

// BenchmarkParseScan measures decoding of the largest common record.
func BenchmarkParseScan(b *testing.B) {
	p := New()
	line := `{"timestamp":"2025-11-27T15:41:01Z","event":"Scan","ScanType":"Detailed","BodyName":"Sol 3","BodyID":3,` +
		`"Parents":[{"Planet":17},{"Star":0}],"StarSystem":"Sol","SystemAddress":10477373803,"DistanceFromArrivalLS":499.1,` +
		`"Landable":false,"PlanetClass":"Earthlike body","Atmosphere":"suitable for water-based life","SurfaceGravity":9.8}`

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkParseStatus measures snapshot frame decoding.
func BenchmarkParseStatus(b *testing.B) {
	p := New()
	line := `{"timestamp":"2025-11-27T15:41:01Z","event":"Status","Flags":16842765,"Flags2":0,"Pips":[4,8,0],"FireGroup":0,"GuiFocus":0,"Fuel":{"FuelMain":32.0,"FuelReservoir":0.63}}`

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(line)
	}
}

// BenchmarkParserThroughput measures sustained lines/sec over a mixed batch.
func BenchmarkParserThroughput(b *testing.B) {
	p := New()

	lines := make([]string, 1000)
	for i := range lines {
		switch i % 4 {
		case 0:
			lines[i] = fmt.Sprintf(`{"timestamp":"2025-11-27T15:41:01Z","event":"FSDJump","StarSystem":"Sys %d","SystemAddress":%d,"StarPos":[1,2,3]}`, i, i+1)
		case 1:
			lines[i] = fmt.Sprintf(`{"timestamp":"2025-11-27T15:41:01Z","event":"Scan","BodyName":"Sys %d 1","BodyID":1,"DistanceFromArrivalLS":%d}`, i, i)
		case 2:
			lines[i] = fmt.Sprintf(`{"timestamp":"2025-11-27T15:41:01Z","event":"Music","MusicTrack":"Track%d"}`, i)
		case 3:
			lines[i] = fmt.Sprintf(`{"timestamp":"2025-11-27T15:41:01Z","event":"FSSDiscoveryScan","Progress":0.5,"BodyCount":%d}`, i%20)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Parse(lines[i%1000])
	}
}
