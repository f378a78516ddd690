package rewrite

// rewritePrompt asks the model to compress a conversational question into
// search keywords. Output must be the keywords only, nothing else.
const rewritePrompt = `You turn conversational questions into short search queries.

Rewrite the user's question as 2-6 search keywords that capture its core
intent. Drop filler words, politeness, and question scaffolding. Keep
proper nouns and technical terms exactly as written.

Respond with the keywords only, separated by spaces. No punctuation, no
explanation.

Question: %s`
