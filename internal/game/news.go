package game

// PickSectorNews schedules one headline per sector for the next
// resolution. Preference order per sector: a SECTOR event targeting it, a
// COMPANY event whose ticker trades in it, any MARKET event, then any
// event at all. Selection within a pool is uniform. Returns nil when the
// catalog is empty.
func (e *Engine) PickSectorNews(st GameState) []NewsEntry {
	if len(e.catalog) == 0 {
		return nil
	}

	sectorOf := make(map[string]SectorID, len(st.Stocks))
	for _, s := range st.Stocks {
		sectorOf[s.Ticker] = s.Sector
	}

	entries := make([]NewsEntry, 0, len(Sectors))
	for _, sector := range Sectors {
		pool := e.eventsForSector(sector.ID, sectorOf)
		pick := pool[e.intn(len(pool))]
		entries = append(entries, NewsEntry{
			SectorID:   sector.ID,
			SectorName: sector.Name,
			EventID:    pick.ID,
		})
	}
	return entries
}

func (e *Engine) eventsForSector(id SectorID, sectorOf map[string]SectorID) []MarketEvent {
	var sectorEvents, companyEvents, marketEvents []MarketEvent
	for _, ev := range e.catalog {
		switch ev.Scope {
		case ScopeSector:
			if ev.Target == string(id) {
				sectorEvents = append(sectorEvents, ev)
			}
		case ScopeCompany:
			if sectorOf[ev.Target] == id {
				companyEvents = append(companyEvents, ev)
			}
		case ScopeMarket:
			marketEvents = append(marketEvents, ev)
		}
	}
	if len(sectorEvents) > 0 {
		return sectorEvents
	}
	if len(companyEvents) > 0 {
		return companyEvents
	}
	if len(marketEvents) > 0 {
		return marketEvents
	}
	return e.catalog
}
