package rules

const defaultCallReply = "Can't take calls at the moment, but will call you back later!"

// Default returns the built-in rule set.
func Default() Set {
	return Set{
		Style: StyleRules{
			FormalWords:   []string{"please", "thank you", "thanks", "appreciate", "sincerely", "regards"},
			InformalWords: []string{"gonna", "wanna", "gotta", "yeah", "yep", "nah", "lol", "haha"},
		},
		Relationship: RelationshipRules{
			PersonalWords:     []string{"love", "miss", "family", "home", "work", "feeling", "tired", "busy"},
			CasualWords:       []string{"lol", "haha", "dude", "bro", "hey", "sup"},
			FamilyNameMarkers: []string{"mom", "dad"},

			CloseFamilyMessagesOver: 50,
			CloseFamilyPersonalOver: 3,
			CloseFriendMessagesOver: 20,
			CloseFriendPersonalOver: 2,
			CloseFriendCasualOver:   3,
			FriendMessagesOver:      10,
		},
		Message: MessageRules{
			UrgentWords:   []string{"urgent", "emergency", "asap", "immediately", "help", "problem", "issue", "quickly"},
			PositiveWords: []string{"good", "great", "awesome", "happy", "excited", "love", "thank"},
			NegativeWords: []string{"bad", "terrible", "sad", "angry", "upset", "disappointed", "hate"},
			QuestionTypes: []KeywordRule{
				{Label: "timing", Keywords: []string{"when", "what time", "schedule"}},
				{Label: "location", Keywords: []string{"where", "location"}},
				{Label: "explanation", Keywords: []string{"how", "why"}},
				{Label: "request", Keywords: []string{"can you", "could you", "will you"}},
			},
		},
		Fallback: FallbackRules{
			Pools: map[string]Pool{
				"close_family": {
					Greetings: []string{
						"Hi {contact}! Just busy with some work, will catch up soon! ❤️",
						"Hey! Can't talk right now but will call you later today 😊",
					},
					General: []string{
						"I'm tied up right now but will get back to you soon!",
						"Give me a bit of time and I'll respond properly ❤️",
					},
					Call: "Can't take calls right now but will call you back soon! ❤️",
				},
				"close_friend": {
					Greetings: []string{
						"Hey {contact}! Busy rn but will hit you up soon! 😊",
						"Sup! Can't chat now but will text you back soon",
					},
					General: []string{
						"Busy right now but will get back to you!",
						"Give me a sec, will respond soon! 😊",
					},
					Call: defaultCallReply,
				},
				DefaultPool: {
					Greetings: []string{
						"Hi {contact}! I'm busy at the moment but will respond soon.",
						"Hello! Can't talk right now but will get back to you.",
					},
					General: []string{
						"Thanks for your message! I'll respond when I'm free.",
						"I'm busy right now but will get back to you soon.",
					},
					Call: defaultCallReply,
				},
			},
			Order: []string{TriggerGreeting, TriggerWellbeing, TriggerCall, TriggerUrgent, TriggerQuestion},

			GreetingWords:  []string{"hello", "hi", "hey", "good morning", "good evening"},
			WellbeingWords: []string{"how are you", "how r u", "what's up", "wassup"},
			CallWords:      []string{"call", "phone", "ring"},
			UrgentWords:    []string{"urgent", "important", "emergency"},

			WellbeingReply: "I'm doing well, thanks! Just caught up with work right now. How about you?",
			UrgentReply:    "Got your message! If it's really urgent, please call. Otherwise I'll respond soon.",
			QuestionReply:  "Thanks for your question! I'll get back to you with an answer soon.",
		},
	}
}
