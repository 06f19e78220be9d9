package parser

import "timetabler/internal/port"

// Prompt is the instruction pair sent to a model for one extraction.
type Prompt struct {
	System string
	User   string
}

// Combined returns both parts joined, for providers without a system role
// and for recording which prompt produced a result.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

// BuildPrompt selects the visual prompt for images and PDFs, and the text
// prompt (with the document text embedded) for converted sources.
func BuildPrompt(input port.ParseInput) Prompt {
	if input.IsText() {
		return BuildTextPrompt(input.Text)
	}
	return BuildVisualPrompt()
}

const jsonFormattingRules = `**JSON FORMATTING RULES:**
- Return ONLY valid JSON, no markdown code blocks
- Escape all special characters in strings (quotes, newlines, backslashes)
- Use double quotes for all property names and string values
- Ensure all strings are properly terminated
- Do not include any text outside the JSON object`

// BuildVisualPrompt returns the prompt for timetables read from an image or
// a PDF rendered by the model.
func BuildVisualPrompt() Prompt {
	return Prompt{
		System: `You are an expert at extracting structured timetable data from images.
You must handle various real-world timetable formats including:
- Typed, scanned, color-coded, or handwritten timetables
- Vertical and horizontal text orientations
- Complex layouts with merged cells
- Recurring daily blocks
- Top-row timing patterns that apply to all days

Be extremely thorough and accurate in extracting ALL timing information.`,
		User: `Extract the complete timetable information from this document and return it as a valid JSON object. Follow these critical rules:

**EXTRACTION RULES:**

1. **Fixed Daily Blocks**: Identify events that occur at the same time every day (e.g., "Morning Work", "Lunch", "Registration"). Mark these as recurring by including "isRecurring": true.

2. **Top-Row Timing Inheritance**: If timing is shown at the top of a column and applies to all days below unless specified otherwise, apply that timing to all applicable days. Look for header rows with times.

3. **Multiple Subjects in One Block**: If a single time slot contains multiple subjects (e.g., "Math / Science"), set "isMultiSubject": true and list them in "subjects".

4. **Text Orientation**: Read both vertical and horizontal text. Rotate your understanding to capture sideways labels.

5. **In-Block Timings**: Some blocks may have times written inside them. Prioritize these over column/row headers when present.

6. **Time Format**: Always output times in 24-hour format (HH:MM), but recognize 12-hour formats with AM/PM.

**OUTPUT FORMAT:**
{
  "title": "Extracted timetable title or 'Weekly Timetable'",
  "metadata": {
    "hasTopRowTiming": true,
    "hasInBlockTiming": false,
    "hasRecurringBlocks": true,
    "orientation": "horizontal"
  },
  "days": [
    {
      "day": "Monday",
      "blocks": [
        {
          "event": "Mathematics",
          "startTime": "09:00",
          "endTime": "10:00",
          "duration": "1h",
          "isRecurring": false,
          "isMultiSubject": false,
          "subjects": ["Mathematics"],
          "notes": "Any additional details",
          "teacher": "",
          "room": "",
          "color": "if color-coded, note the color"
        }
      ]
    }
  ],
  "recurringBlocks": [
    {
      "event": "Lunch Break",
      "startTime": "12:00",
      "endTime": "13:00",
      "appliesTo": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]
    }
  ]
}

**IMPORTANT:**
- Extract EVERY single block, even breaks and transitions
- If times are unclear, estimate based on visual spacing and typical school schedules
- Preserve original event names exactly as written
- Note any special formatting or colors used
- If a block spans multiple time slots, calculate the correct duration
- Look for patterns across days to identify recurring blocks
- Use "all" in "appliesTo" for blocks that occur on every day

` + jsonFormattingRules,
	}
}

// BuildTextPrompt returns the prompt for timetables already converted to text.
func BuildTextPrompt(text string) Prompt {
	return Prompt{
		System: `You are an expert at extracting structured timetable data from text.
You must identify patterns, recurring blocks, and timing inheritance.
Handle complex timetable structures with multiple subjects per block.`,
		User: `Extract comprehensive timetable information from this text and return it as a valid JSON object:

` + text + `

**FOLLOW THESE RULES:**
1. Identify recurring daily blocks (e.g., lunch, breaks that happen same time every day)
2. Detect top-row timing patterns that apply to multiple days
3. Mark blocks where multiple subjects share one time slot with "isMultiSubject": true and list them in "subjects"
4. Extract all timing information, including in-block times if present
5. Preserve all notes, room numbers, and additional details
6. Output times in 24-hour format (HH:MM)

**OUTPUT FORMAT:**
{
  "title": "Extracted timetable title",
  "metadata": {
    "hasTopRowTiming": true,
    "hasRecurringBlocks": true
  },
  "days": [
    {
      "day": "Monday",
      "blocks": [
        {
          "event": "Mathematics",
          "startTime": "09:00",
          "endTime": "10:00",
          "duration": "1h",
          "isRecurring": false,
          "isMultiSubject": false,
          "subjects": ["Mathematics"],
          "notes": "Room 101, Mr. Smith",
          "teacher": "Mr. Smith",
          "room": "101"
        }
      ]
    }
  ],
  "recurringBlocks": [
    {
      "event": "Lunch",
      "startTime": "12:00",
      "endTime": "13:00",
      "appliesTo": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]
    }
  ]
}

Extract EVERY block accurately with all timing details.

` + jsonFormattingRules,
	}
}
