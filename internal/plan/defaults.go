package plan

// Default templates seeded on first run and restored by "reset to
// defaults". IDs are explicit so completion history survives template
// re-seeding.

var defaultWorkSchedule = []ScheduleItem{
	{ID: "work-default-1", Time: "08:00 – 08:30", Activity: "Italian refresh (vocab review + quick drilling)"},
	{ID: "work-default-2", Time: "08:30 – 09:00", Activity: "Listening & speaking (shadow a short podcast)"},
	{ID: "work-default-3", Time: "09:00 – 11:00", Activity: "Deep work (project or core topic), 50/10 focus cycles"},
	{ID: "work-default-4", Time: "11:00 – 11:15", Activity: "Break (hydrate, short walk)"},
	{ID: "work-default-5", Time: "11:15 – 12:15", Activity: "Practice hour (implement a feature, fix bugs, small kata)"},
	{ID: "work-default-6", Time: "12:15 – 13:00", Activity: "Lunch"},
	{ID: "work-default-7", Time: "13:00 – 15:00", Activity: "Deep work continued"},
	{ID: "work-default-8", Time: "15:00 – 15:30", Activity: "Review notes, plan tomorrow"},
}

var defaultOffSchedule = []ScheduleItem{
	{ID: "off-default-1", Time: "08:00 – 08:30", Activity: "Italian (flashcards, verb conjugations)"},
	{ID: "off-default-2", Time: "08:30 – 09:00", Activity: "Conversation practice (journal or voice notes)"},
	{ID: "off-default-3", Time: "09:00 – 11:30", Activity: "Deep project block (feature build, no tutorials)"},
	{ID: "off-default-4", Time: "11:30 – 12:00", Activity: "Break / walk"},
	{ID: "off-default-5", Time: "12:00 – 13:00", Activity: "Lunch"},
	{ID: "off-default-6", Time: "13:00 – 14:00", Activity: "Reading or course video"},
	{ID: "off-default-7", Time: "14:00 – 16:00", Activity: "Free build time"},
}

// DefaultSchedule returns a sanitized copy of the built-in template for
// the given day type. Unknown day types get an empty list.
func DefaultSchedule(dayType DayType) []ScheduleItem {
	switch dayType {
	case DayTypeWork:
		return SanitizeList(DayTypeWork, defaultWorkSchedule)
	case DayTypeOff:
		return SanitizeList(DayTypeOff, defaultOffSchedule)
	default:
		return nil
	}
}

// DefaultSchedules returns sanitized copies of both built-in templates.
func DefaultSchedules() map[DayType][]ScheduleItem {
	return map[DayType][]ScheduleItem{
		DayTypeWork: DefaultSchedule(DayTypeWork),
		DayTypeOff:  DefaultSchedule(DayTypeOff),
	}
}
