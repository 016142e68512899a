package registry

import (
	"testing"
	"time"
)

func TestCacheRouteAndGetCachedRouteHit(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	info := RouteInfo{FlightNumber: "EK001", Route: "DXB-LHR", Origin: "DXB", Destination: "LHR"}
	if err := s.CacheRoute("FDB8876", info, now); err != nil {
		t.Fatalf("CacheRoute: %v", err)
	}

	got, ok, err := s.GetCachedRoute("FDB8876", DefaultRouteCacheTTL, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetCachedRoute: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit within TTL")
	}
	if got.FlightNumber != "EK001" || got.Route != "DXB-LHR" {
		t.Errorf("unexpected cached route: %+v", got)
	}
}

func TestGetCachedRouteMissesPastTTL(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := s.CacheRoute("FDB8876", RouteInfo{FlightNumber: "EK001"}, now); err != nil {
		t.Fatalf("CacheRoute: %v", err)
	}

	_, ok, err := s.GetCachedRoute("FDB8876", DefaultRouteCacheTTL, now.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("GetCachedRoute: %v", err)
	}
	if ok {
		t.Errorf("expected cache miss past TTL")
	}
}

func TestGetCachedRouteMissesUnknownCallsign(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetCachedRoute("NOPE99", DefaultRouteCacheTTL, time.Now())
	if err != nil {
		t.Fatalf("GetCachedRoute: %v", err)
	}
	if ok {
		t.Errorf("expected cache miss for unknown callsign")
	}
}

func TestCacheRouteOverwritesExisting(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := s.CacheRoute("FDB8876", RouteInfo{FlightNumber: "EK001"}, now); err != nil {
		t.Fatalf("first CacheRoute: %v", err)
	}
	if err := s.CacheRoute("FDB8876", RouteInfo{FlightNumber: "EK002"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("second CacheRoute: %v", err)
	}

	got, ok, err := s.GetCachedRoute("FDB8876", DefaultRouteCacheTTL, now.Add(2*time.Minute))
	if err != nil || !ok {
		t.Fatalf("GetCachedRoute: ok=%v err=%v", ok, err)
	}
	if got.FlightNumber != "EK002" {
		t.Errorf("expected overwritten flight number EK002, got %q", got.FlightNumber)
	}
}
