package mysql

import (
	"database/sql"
	"testing"
	"time"
)

// fakeRow fills the lodging columns in select order.
type fakeRow struct{ facilities []byte }

func (f fakeRow) Scan(dest ...any) error {
	*dest[0].(*string) = "l-1"
	*dest[1].(*string) = "青葉荘"
	*dest[2].(*string) = "中区寿町1-1"
	*dest[3].(*string) = ""
	*dest[4].(*int) = 50
	*dest[5].(*int) = 5
	*dest[6].(*int) = 2500
	*dest[7].(*sql.NullString) = sql.NullString{String: "駅近", Valid: true}
	*dest[8].(*[]byte) = f.facilities
	*dest[9].(*string) = ""
	*dest[10].(*sql.NullFloat64) = sql.NullFloat64{}
	*dest[11].(*sql.NullFloat64) = sql.NullFloat64{}
	*dest[12].(*bool) = true
	*dest[13].(*sql.NullTime) = sql.NullTime{Time: time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC), Valid: true}
	return nil
}

func TestScanLodging(t *testing.T) {
	l, err := scanLodging(fakeRow{facilities: []byte(`["Wi-Fi","共同浴場"]`)})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(l.Facilities) != 2 || l.Facilities[1] != "共同浴場" {
		t.Errorf("facilities = %v", l.Facilities)
	}
	if l.Coords != nil {
		t.Errorf("coords = %v, want nil", l.Coords)
	}

	l, err = scanLodging(fakeRow{})
	if err != nil || l.Facilities == nil || len(l.Facilities) != 0 {
		t.Errorf("empty facilities: %v, %v", l.Facilities, err)
	}

	if _, err := scanLodging(fakeRow{facilities: []byte(`{"wifi":`)}); err == nil {
		t.Error("corrupt facilities JSON should fail the scan")
	}
}
