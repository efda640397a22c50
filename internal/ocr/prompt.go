package ocr

// TranscriptionPrompt asks a vision model for a faithful line-by-line transcription
// of a bill. The extraction pipeline does the structuring, so the model must not.
const TranscriptionPrompt = `You are an OCR engine. Transcribe the attached bill or invoice exactly as printed.

Rules:
- Output plain text only. No markdown, no code fences, no commentary.
- Keep one printed row per output line. Keep the columns of a table row on the same line, separated by single spaces.
- Copy every number exactly as printed, including decimal points and thousands separators.
- Do not translate, summarize, reorder, correct or compute anything.
- Before the text of each page write a line "Page N" where N is the page number starting at 1.`
