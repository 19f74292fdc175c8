package ai

// ExtractPromptText is the system prompt for entity and relationship
// extraction from a plain-text unit. The format placeholders are, in order:
// entity types, document name, entity types, entity types.
const ExtractPromptText = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text. Capture every detail explicitly present in the text, without omission.

# Background Data
- **Entity_types:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the primary entity. Use it only if the text itself does not clearly name an entity.

# Detailed Task Description & Rules

## Entity Extraction
1. Identify all entities of the specified types [%s].
2. For each entity, extract:
   - **name:** The name of the entity, written in **ALL CAPITAL LETTERS**.
   - **type:** One of the provided types [%s].
   - **description:** A comprehensive description of all attributes, roles, activities, events, and other explicit details in the text. Do **not** omit any explicit information.

## Relationship Extraction
1. From the identified entities, determine all clear directed relationships between pairs of entities.
2. For each relationship, extract:
   - **source:** name of the source entity, exactly as identified above.
   - **target:** name of the target entity, exactly as identified above.
   - **type:** a short relationship label in ALL CAPITAL LETTERS with underscores, e.g. WORKS_AT, LOCATED_IN, PART_OF.
3. Only report relationships where both endpoints appear in the extracted entity list. If no relationships are stated, return an empty array.

# Output
Respond with a single JSON object containing "entities" and "relationships" arrays matching the requested schema. Do not include any other text.
`
