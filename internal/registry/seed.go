package registry

// DefaultCatalog returns the built-in Mergington High School activities
func DefaultCatalog() []Seed {
	return []Seed{
		{
			Name: "Chess Club",
			Activity: Activity{
				Description:     "Learn strategies and compete in chess tournaments",
				Schedule:        "Fridays, 3:30 PM - 5:00 PM",
				MaxParticipants: 12,
				Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
			},
		},
		{
			Name: "Programming Class",
			Activity: Activity{
				Description:     "Learn programming fundamentals and build software projects",
				Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
				MaxParticipants: 20,
				Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
			},
		},
		{
			Name: "Gym Class",
			Activity: Activity{
				Description:     "Physical education and sports activities",
				Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
				MaxParticipants: 30,
				Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
			},
		},
		{
			Name: "Basketball Team",
			Activity: Activity{
				Description:     "Practice drills and compete in inter-school basketball games",
				Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
				MaxParticipants: 15,
				Participants:    []string{"alex@mergington.edu"},
			},
		},
		{
			Name: "Soccer Club",
			Activity: Activity{
				Description:     "Train together and play friendly soccer matches",
				Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
				MaxParticipants: 22,
				Participants:    []string{"lucas@mergington.edu", "mia@mergington.edu"},
			},
		},
		{
			Name: "Art Club",
			Activity: Activity{
				Description:     "Explore painting, drawing and sculpture",
				Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
				MaxParticipants: 15,
				Participants:    []string{"ava@mergington.edu"},
			},
		},
		{
			Name: "Drama Club",
			Activity: Activity{
				Description:     "Act, direct and produce school plays and performances",
				Schedule:        "Mondays and Wednesdays, 3:30 PM - 5:00 PM",
				MaxParticipants: 20,
				Participants:    []string{"ethan@mergington.edu", "isabella@mergington.edu"},
			},
		},
		{
			Name: "Math Club",
			Activity: Activity{
				Description:     "Solve challenging problems and prepare for math competitions",
				Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
				MaxParticipants: 10,
				Participants:    []string{"noah@mergington.edu"},
			},
		},
		{
			Name: "Debate Team",
			Activity: Activity{
				Description:     "Develop public speaking and argumentation skills",
				Schedule:        "Fridays, 4:00 PM - 5:30 PM",
				MaxParticipants: 12,
				Participants:    []string{"charlotte@mergington.edu", "liam@mergington.edu"},
			},
		},
	}
}
