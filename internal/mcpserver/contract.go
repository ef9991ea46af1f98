package mcpserver

// NoteFormatContract describes the note format that LLM consumers should
// follow when creating or updating notes.
const NoteFormatContract = `# Note Format Contract

Notes are stored in a database, not as files. A note has a title and a
Markdown body; categories and tags are managed separately.

## Links

Reference another note by its **title** in double brackets:

` + "```" + `markdown
See [[Project Plan]] for the schedule.
` + "```" + `

1. Matching ignores case and also accepts a part of a title: ` + "`" + `[[plan]]` + "`" + `
   links to "Project Plan" when no better match exists.
2. When several titles match, an exact title wins, then the most recently
   updated note.
3. A link to the note itself is ignored.
4. No ` + "`" + `]` + "`" + ` inside the brackets, no ` + "`" + `|alias` + "`" + ` syntax, no file paths.
5. A link whose title matches no note is kept in the text and reported as
   broken. It starts working once a note with that title exists and links are
   resynced.

## Body

- Standard Markdown, UTF-8.
- Prefer one ` + "`" + `# Heading` + "`" + ` matching the title.
- Inline ` + "`" + `#tags` + "`" + ` are only recognised for notes imported from a vault.

## Example

` + "```" + `markdown
# Weekly standup 2025-01-20

Attendees: Alice, Bob.

## Action items

- Alice to review the [[Design Doc]]
- Bob to update [[Roadmap]]
` + "```" + `
`
