package assignment

// DemoInspectors returns the built-in sample inspectors.
func DemoInspectors() []Inspector {
	return []Inspector{
		{ID: "insp-1", Name: "Alice", Location: Location{Lat: 49.2827, Lng: -123.1207}, SkillLevel: 5},
		{ID: "insp-2", Name: "Bob", Location: Location{Lat: 49.1666, Lng: -123.1336}, SkillLevel: 3},
	}
}

// DemoJobs returns the built-in sample jobs.
func DemoJobs() []InspectionJob {
	return []InspectionJob{
		{ID: "job-A", Location: Location{Lat: 49.2606, Lng: -123.2460}, Priority: 2, EstimatedHours: 2.0, RequiredSkillLevel: 2},
		{ID: "job-B", Location: Location{Lat: 49.1304, Lng: -123.0697}, Priority: 5, EstimatedHours: 4.0, RequiredSkillLevel: 3},
	}
}
