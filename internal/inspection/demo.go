package inspection

// DemoElements returns the built-in sample building elements.
func DemoElements() []BuildingElement {
	return []BuildingElement{
		{Name: "Asphalt Shingle Roof", Category: "Envelope", AgeYears: 18},
		{Name: "Boiler Room #1", Category: "Mechanical", AgeYears: 5},
		{Name: "Underground Parkade Membrane", Category: "Structure", AgeYears: 25},
		{Name: "Lobby Interiors", Category: "Cosmetic", AgeYears: 10},
	}
}
