package prompt

import "fmt"

// defectPrompt instructs the model to answer with the six-field defect report
// as pure JSON. The model is not trusted to comply; the normalizer tolerates
// fenced and prose-wrapped replies.
const defectPrompt = `You are a highly accurate defect detection expert.

Analyze the provided image and user description.

Your tasks:
1. Identify object/environment in the image.
2. Detect any visible defects, damages, irregularities.
3. Explain likely root cause.
4. Provide severity level: low, medium, or high.
5. Give precise recommendations for what to do next.
6. Give a confidence score between 0 to 1.

Return output in this JSON format only:

{
  "image_understanding": "",
  "detected_defects": "",
  "root_cause": "",
  "severity": "",
  "recommendations": "",
  "confidence": ""
}`

// Defect builds the instruction prompt, appending the optional user
// description as a plain-text suffix.
func Defect(description string) string {
	if description == "" {
		return defectPrompt
	}
	return fmt.Sprintf("%s\n\nUser Description: %s", defectPrompt, description)
}
