package story

import "github.com/DeafWorld/story-clash/internal/types"

func builtinStories() map[types.GenreID]*types.StoryTree {
	return map[types.GenreID]*types.StoryTree{
		types.GenreZombie:  zombieStory(),
		types.GenreAlien:   alienStory(),
		types.GenreHaunted: hauntedStory(),
	}
}

func zombieStory() *types.StoryTree {
	return &types.StoryTree{
		Genre: types.GenreZombie,
		Title: "Zombie Outbreak",
		Scenes: []types.Scene{
			{
				ID:           "start",
				Text:         "Sirens die mid-wail as the horde pours into the mall atrium. The shutters are failing and your crew has seconds to move.",
				TensionLevel: 2,
				Choices: []types.Choice{
					{ID: "a", Label: "Barricade the atrium doors", NextID: "mall_siege"},
					{ID: "b", Label: "Sprint for the parking garage", NextID: "garage_run"},
					{ID: "c", Label: "Raid the pharmacy for supplies", NextID: "pharmacy"},
				},
				FreeChoiceKeywords: map[string]string{
					"fight|weapon|swing": "mall_siege",
					"run|sprint|escape":  "garage_run",
					"default":            "pharmacy",
				},
			},
			{
				ID:           "mall_siege",
				Text:         "The barricade holds, barely. Trapped shoppers huddle by the fountain while something heavy tests the loading dock door.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Share supplies and lead everyone to the roof", NextID: "rooftop_signal"},
					{ID: "b", Label: "Fight through the loading dock horde", NextID: "loading_dock"},
				},
			},
			{
				ID:           "rooftop_signal",
				Text:         "Wind screams across the rooftop. A helicopter circles the district, and a whisper rises from the ventilation shaft behind you.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Signal the helicopter with a flare", NextID: "helicopter_lift"},
					{ID: "b", Label: "Investigate the whisper in the vents", NextID: "vent_maze"},
				},
			},
			{
				ID:           "helicopter_lift",
				Text:         "The rope ladder drops as the stairwell door buckles. The horde is one floor below and the pilot will not wait.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Climb the ladder one by one", NextID: "ending_survival"},
					{ID: "b", Label: "Charge the stairwell so the others can board", NextID: "ending_triumph"},
				},
			},
			{
				ID:           "garage_run",
				Text:         "Engines tick in the dark garage. A transit bus sits half-fueled by the exit ramp, and shapes shuffle between the cars.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Hotwire the bus and gun it", NextID: "highway"},
					{ID: "b", Label: "Slip between the cars toward the pharmacy", NextID: "pharmacy"},
				},
			},
			{
				ID:           "pharmacy",
				Text:         "Shelves lie gutted, but the back room still holds antibiotics. A wounded security guard begs for help from behind the counter.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Grab the medicine and head for the roof", NextID: "rooftop_signal"},
					{ID: "b", Label: "Help the wounded guard first", NextID: "loading_dock"},
				},
			},
			{
				ID:           "loading_dock",
				Text:         "Crowbars against the swarm. The dock door gives way to open night air, but the rooftop stairs are still clear behind you.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Blast through to the access road", NextID: "highway"},
					{ID: "b", Label: "Retreat up to the rooftop", NextID: "rooftop_signal"},
				},
			},
			{
				ID:           "highway",
				Text:         "The bus roars onto the overpass. A quarantine checkpoint glows to the north; the bridge south is carpeted with the dead.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Drive for the quarantine checkpoint", NextID: "ending_survival"},
					{ID: "b", Label: "Ram the swarm on the southern bridge", NextID: "ending_doom"},
				},
			},
			{
				ID:           "vent_maze",
				Text:         "The whisper is a radio, still keyed, in a dead researcher's hand. A maintenance ladder drops toward a sealed lab level.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Follow the ladder into the lab", NextID: "lab"},
					{ID: "b", Label: "Crawl back to the rooftop", NextID: "helicopter_lift"},
				},
			},
			{
				ID:           "lab",
				Text:         "Cold light over a field terminal: outbreak research, half-finished. Enough to matter, if anyone lives to deliver it.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Take the research and evacuate", NextID: "ending_triumph"},
					{ID: "b", Label: "Destroy the samples and run", NextID: "ending_survival"},
				},
			},
			{
				ID:           "ending_survival",
				Text:         "Dawn finds you breathing. Not whole, not safe, but alive, and the city burns small behind you.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingSurvival,
			},
			{
				ID:           "ending_triumph",
				Text:         "The research reaches the quarantine line. Someone in a lab coat calls it a turning point. Your crew calls it Tuesday.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingTriumph,
			},
			{
				ID:           "ending_doom",
				Text:         "The bridge takes the bus, and the swarm takes the rest. The story of your crew ends in the churn.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingDoom,
			},
		},
	}
}

func alienStory() *types.StoryTree {
	return &types.StoryTree{
		Genre: types.GenreAlien,
		Title: "Alien Invasion",
		Scenes: []types.Scene{
			{
				ID:           "start",
				Text:         "The relay station's lights gutter as the fleet's shadow slides over the valley. Your uplink to orbit is the last one broadcasting.",
				TensionLevel: 2,
				Choices: []types.Choice{
					{ID: "a", Label: "Restore the uplink from the relay room", NextID: "relay_room"},
					{ID: "b", Label: "Scout the crashed drone in the field", NextID: "drone_field"},
					{ID: "c", Label: "Seal the station and wait for nightfall", NextID: "lockdown"},
				},
				FreeChoiceKeywords: map[string]string{
					"signal|uplink|comms": "relay_room",
					"drone|wreck|crash":   "drone_field",
					"default":             "lockdown",
				},
			},
			{
				ID:           "relay_room",
				Text:         "Static resolves into a voice: an orbital platform still answers. They need ground codes before the beacon window closes.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Transmit the ground codes now", NextID: "beacon_window"},
					{ID: "b", Label: "Encrypt the codes and verify the voice first", NextID: "cipher_check"},
				},
			},
			{
				ID:           "beacon_window",
				Text:         "The beacon spins up. Outside, drones converge on the signal like moths. The platform promises a shuttle if you hold the relay.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Hold the relay until the shuttle lands", NextID: "shuttle_pad"},
					{ID: "b", Label: "Overload the reactor as a decoy", NextID: "reactor_gambit"},
				},
			},
			{
				ID:           "shuttle_pad",
				Text:         "Retro-thrusters scorch the pad. Plasma fire stitches the dark as the last of your crew breaks cover.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Board under covering fire", NextID: "ending_survival"},
					{ID: "b", Label: "Upload the fleet's attack pattern before boarding", NextID: "ending_triumph"},
				},
			},
			{
				ID:           "drone_field",
				Text:         "The wreck is warm. Its core still cycles a repeating code — coordinates, maybe, or a countdown.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Pull the core and haul it to the relay", NextID: "relay_room"},
					{ID: "b", Label: "Trace the coordinates on foot", NextID: "canyon_path"},
				},
			},
			{
				ID:           "lockdown",
				Text:         "Bolts slam home. Through the slit window you watch light columns walk the valley floor, patient as surveyors.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Run dark and map their sweep pattern", NextID: "cipher_check"},
					{ID: "b", Label: "Break for the drone wreck while they pass", NextID: "drone_field"},
				},
			},
			{
				ID:           "cipher_check",
				Text:         "The voice checks out — barely. Buried in its carrier wave you find a second signal, human, pleading, much closer.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Answer the near signal", NextID: "canyon_path"},
					{ID: "b", Label: "Commit to the orbital platform", NextID: "beacon_window"},
				},
			},
			{
				ID:           "canyon_path",
				Text:         "Survivors shelter under the canyon rim with a salvaged plasma battery. Above, the fleet begins its descent.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Lead everyone back to the relay", NextID: "beacon_window"},
					{ID: "b", Label: "Rig the battery into a weapon", NextID: "reactor_gambit"},
				},
			},
			{
				ID:           "reactor_gambit",
				Text:         "The overload timer runs. Whatever happens next happens fast, and not all of it is yours to choose.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Clear the blast radius and signal the shuttle", NextID: "shuttle_pad"},
					{ID: "b", Label: "Ride the timer down to be sure", NextID: "ending_doom"},
				},
			},
			{
				ID:           "ending_survival",
				Text:         "Orbit swallows the valley's glow. You are a handful of heartbeats in a metal shell, and that is enough.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingSurvival,
			},
			{
				ID:           "ending_triumph",
				Text:         "The attack pattern cracks the fleet's screen wide open. The counterstrike that follows carries your callsign.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingTriumph,
			},
			{
				ID:           "ending_doom",
				Text:         "The valley becomes a second sun. The fleet notes the loss and continues its descent, unhurried.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingDoom,
			},
		},
	}
}

func hauntedStory() *types.StoryTree {
	return &types.StoryTree{
		Genre: types.GenreHaunted,
		Title: "Haunted Manor",
		Scenes: []types.Scene{
			{
				ID:           "start",
				Text:         "The manor doors close themselves behind you. Candles gutter along the hall, and somewhere above, a lullaby plays backward.",
				TensionLevel: 2,
				Choices: []types.Choice{
					{ID: "a", Label: "Follow the lullaby upstairs", NextID: "nursery"},
					{ID: "b", Label: "Search the study for the caretaker's journal", NextID: "study"},
					{ID: "c", Label: "Light the chapel candles", NextID: "chapel"},
				},
				FreeChoiceKeywords: map[string]string{
					"music|song|upstairs":  "nursery",
					"book|journal|read":    "study",
					"default":              "chapel",
				},
			},
			{
				ID:           "nursery",
				Text:         "A music box turns by itself in an empty crib. In the mirror, the room is full of children watching you.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Speak to the children in the mirror", NextID: "mirror_gallery"},
					{ID: "b", Label: "Close the music box", NextID: "cold_hall"},
				},
			},
			{
				ID:           "study",
				Text:         "The journal's last entry is tomorrow's date. It describes, in a careful hand, exactly how each of you dies.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Burn the journal in the grate", NextID: "cold_hall"},
					{ID: "b", Label: "Read the entry aloud to break it", NextID: "mirror_gallery"},
				},
			},
			{
				ID:           "chapel",
				Text:         "The candles take flame in the wrong order. Beneath the altar, a ring of salt has been swept deliberately open.",
				TensionLevel: 3,
				Choices: []types.Choice{
					{ID: "a", Label: "Close the salt ring", NextID: "ritual"},
					{ID: "b", Label: "Descend the stair behind the altar", NextID: "crypt"},
				},
			},
			{
				ID:           "mirror_gallery",
				Text:         "A hundred mirrors, one hallway. Your reflections lag half a step behind, and one of them is counting your crew.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Shatter the counting mirror", NextID: "ritual"},
					{ID: "b", Label: "Walk the gallery without looking", NextID: "crypt"},
				},
			},
			{
				ID:           "cold_hall",
				Text:         "Frost crawls the wallpaper ahead of your breath. At the hall's end, the cellar door stands open on warm air.",
				TensionLevel: 4,
				Choices: []types.Choice{
					{ID: "a", Label: "Take the cellar stair", NextID: "crypt"},
					{ID: "b", Label: "Hold the hall and wait for dawn", NextID: "ending_doom"},
				},
			},
			{
				ID:           "ritual",
				Text:         "Salt, candle, name. The manor's spirit has rules, and the journal's margins taught you most of them.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Finish the binding ritual", NextID: "ending_triumph"},
					{ID: "b", Label: "Bargain for safe passage instead", NextID: "ending_survival"},
				},
			},
			{
				ID:           "crypt",
				Text:         "The caretaker's coffin is empty. The one beside it bears tomorrow's date and a brass plate with room for six names.",
				TensionLevel: 5,
				Choices: []types.Choice{
					{ID: "a", Label: "Seal the vault and run for the doors", NextID: "ending_survival"},
					{ID: "b", Label: "Lie down and call the spirit's bluff", NextID: "ending_doom"},
				},
			},
			{
				ID:           "ending_survival",
				Text:         "The doors open onto grey morning. Behind you the lullaby resumes, patient, for whoever visits next.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingSurvival,
			},
			{
				ID:           "ending_triumph",
				Text:         "The binding holds. The manor settles, house-sized again, and the candles burn in the right order.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingTriumph,
			},
			{
				ID:           "ending_doom",
				Text:         "Six names on a brass plate. The manor keeps its guests, and the lullaby plays forward now.",
				TensionLevel: 5,
				Ending:       true,
				EndingType:   types.EndingDoom,
			},
		},
	}
}
